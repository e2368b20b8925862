package resolve

import (
	"context"
	"runtime"

	"github.com/picatz/rid/pkg/registrar"
	"github.com/picatz/rid/pkg/rippletxt"
	"golang.org/x/sync/semaphore"
)

// Domain resolves an address through the domain its account claims: it asks
// the registrar for the claimed domain, fetches that domain's ripple.txt,
// and only trusts a name derived from the file if the file advertises the
// address in question (the reverse-check).
//
// This is the most failure-prone source, with two network round trips in
// sequence against arbitrary third-party hosts; every step degrades to "no
// answer" rather than surfacing an error.
type Domain struct {
	// Registrar supplies the claimed domain. Share the instance with the
	// Nickname source so both ride a single registrar request per address.
	Registrar *registrar.Client

	Fetcher *rippletxt.Client
	Lock    *semaphore.Weighted
}

// String is a custom printer for debugging purposes.
func (s *Domain) String() string {
	return "domain"
}

// Lookup returns the claimed domain's x-name for the address if the identity
// file defines one, or the bare domain name, but only after the reverse-check
// passes.
func (s *Domain) Lookup(ctx context.Context, address string) Candidate {
	if s.Lock == nil {
		s.Lock = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	}

	if err := s.Lock.Acquire(ctx, 1); err != nil {
		return failed(s.String(), err)
	}
	defer s.Lock.Release(1)

	if s.Registrar == nil {
		s.Registrar = &registrar.Client{}
	}

	account, err := s.Registrar.Lookup(ctx, address)
	if err != nil {
		return failed(s.String(), err)
	}

	if account.Domain == "" {
		// The account claims no domain; nothing further to check.
		return absent(s.String())
	}

	if s.Fetcher == nil {
		s.Fetcher = &rippletxt.Client{}
	}

	record, err := s.Fetcher.Fetch(ctx, account.Domain)
	if err != nil {
		return failed(s.String(), err)
	}

	// Reverse-check: the identity file must advertise this address, or the
	// domain claim is unverified and must not be trusted.
	if !record.Claims(address) {
		return absent(s.String())
	}

	if name := record.XName(); name != "" {
		return found(s.String(), TagXName, name)
	}

	return found(s.String(), TagDomain, account.Domain)
}
