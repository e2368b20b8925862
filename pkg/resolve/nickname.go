package resolve

import (
	"context"
	"runtime"

	"github.com/picatz/rid/pkg/registrar"
	"golang.org/x/sync/semaphore"
)

// Nickname asks the registrar for the name registered against an address.
type Nickname struct {
	Client *registrar.Client
	Lock   *semaphore.Weighted
}

// String is a custom printer for debugging purposes.
func (s *Nickname) String() string {
	return "nickname"
}

// Lookup returns the registered nickname for the address, if any. Any
// registrar failure degrades silently to a failed candidate.
func (s *Nickname) Lookup(ctx context.Context, address string) Candidate {
	if s.Lock == nil {
		s.Lock = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	}

	if err := s.Lock.Acquire(ctx, 1); err != nil {
		return failed(s.String(), err)
	}
	defer s.Lock.Release(1)

	if s.Client == nil {
		s.Client = &registrar.Client{}
	}

	account, err := s.Client.Lookup(ctx, address)
	if err != nil {
		return failed(s.String(), err)
	}

	if account.Username == "" {
		return absent(s.String())
	}

	// Registrar convention: nicknames are shown with a leading tilde.
	return found(s.String(), TagNickname, "~"+account.Username)
}
