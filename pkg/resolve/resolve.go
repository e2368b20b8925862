// Package resolve turns a Ripple address into the best human-readable name
// available within a time budget, by querying several independent sources
// concurrently: a static table of well-known addresses, the nickname
// registrar, and the domain the account claims (verified via its ripple.txt
// identity file).
//
// Nothing is cached between resolutions: a source that cannot answer now may
// have a better answer next time, and callers are expected to re-ask.
package resolve

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/picatz/rid/pkg/registrar"
	"github.com/picatz/rid/pkg/rippletxt"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrInvalidAddress is returned for input that cannot be a Ripple
	// address. Rejected before any source runs.
	ErrInvalidAddress = errors.New("resolve: invalid address")

	// ErrInvalidTimeout is returned for a negative timeout. Rejected before
	// any source runs.
	ErrInvalidTimeout = errors.New("resolve: negative timeout")
)

// ValidAddress reports whether address is plausibly a Ripple account
// address: an "r" prefix, 25 to 35 characters, base58 alphabet.
func ValidAddress(address string) bool {
	if len(address) < 25 || len(address) > 35 {
		return false
	}

	if address[0] != 'r' {
		return false
	}

	for _, c := range address {
		if !validAddressChar(c) {
			return false
		}
	}

	return true
}

// validAddressChar reports base58 membership: digits and letters minus the
// ambiguous 0, O, I and l.
func validAddressChar(c rune) bool {
	switch {
	case c >= '1' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return c != 'l'
	case c >= 'A' && c <= 'Z':
		return c != 'I' && c != 'O'
	}
	return false
}

// Result is the final answer for one address: the chosen name tagged with
// the kind of source that produced it, or Found false when no source had a
// name in time.
type Result struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Tag     Tag    `json:"tag,omitempty"`
	Found   bool   `json:"found"`
}

// priority is the fixed selection order over candidate tags. First match
// wins, independent of which source answered first.
var priority = []Tag{TagMapping, TagXName, TagNickname, TagDomain}

// Resolver fans an address out to its sources and picks the best answer
// available before the deadline. Resolutions are independent; a Resolver
// holds no per-request state and is safe for concurrent use.
type Resolver struct {
	Sources Sources
}

// New returns a Resolver wired with the three standard sources. A nil table
// means the built-in WellKnown table. The nickname and domain sources share
// the registrar client, so a single registrar request serves both, and a
// shared lock bounds their concurrent outbound requests.
func New(table map[string]string, reg *registrar.Client, fetcher *rippletxt.Client) *Resolver {
	if table == nil {
		table = WellKnown
	}

	if reg == nil {
		reg = &registrar.Client{}
	}

	// Collaborators are pinned here so concurrent resolutions never race on
	// a source's lazy defaults.
	if fetcher == nil {
		fetcher = &rippletxt.Client{}
	}

	lock := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

	return &Resolver{
		Sources: Sources{
			&Mapping{Table: table},
			&Nickname{Client: reg, Lock: lock},
			&Domain{Registrar: reg, Fetcher: fetcher, Lock: lock},
		},
	}
}

// Resolve looks the address up in every source concurrently and returns the
// best candidate available within timeout. A zero timeout means wait for
// every source. The result is a one-shot snapshot: answers arriving after
// the deadline are abandoned, never delivered late.
func (r *Resolver) Resolve(ctx context.Context, address string, timeout time.Duration) (*Result, error) {
	candidates, err := r.Collect(ctx, address, timeout)
	if err != nil {
		return nil, err
	}
	return Pick(address, candidates), nil
}

// Collect runs every source concurrently and gathers whichever candidates
// complete within timeout.
func (r *Resolver) Collect(ctx context.Context, address string, timeout time.Duration) ([]Candidate, error) {
	if !ValidAddress(address) {
		return nil, ErrInvalidAddress
	}

	if timeout < 0 {
		return nil, ErrInvalidTimeout
	}

	var cancel context.CancelFunc = func() {}

	if timeout != 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	defer cancel()

	// One registrar request serves both the nickname and domain sources
	// within this resolution; the share never crosses into other
	// resolutions.
	ctx = registrar.WithShared(ctx)

	// Buffered to the source count so sources abandoned at the deadline can
	// still send their late candidate and exit.
	results := make(chan Candidate, len(r.Sources))

	for _, src := range r.Sources {
		go func(src Source) {
			results <- src.Lookup(ctx, address)
		}(src)
	}

	candidates := make([]Candidate, 0, len(r.Sources))

collect:
	for range r.Sources {
		select {
		case candidate := <-results:
			candidates = append(candidates, candidate)

			// Nothing outranks a mapping hit; stop waiting once one arrives.
			if candidate.State == StateFound && candidate.Tag == TagMapping {
				break collect
			}
		case <-ctx.Done():
			break collect
		}
	}

	return candidates, nil
}

// Pick applies the fixed priority order over whatever candidates completed.
// Deterministic given the candidate set, regardless of arrival order.
func Pick(address string, candidates []Candidate) *Result {
	for _, tag := range priority {
		for _, candidate := range candidates {
			if candidate.State == StateFound && candidate.Tag == tag && candidate.Name != "" {
				return &Result{
					Address: address,
					Name:    candidate.Name,
					Tag:     tag,
					Found:   true,
				}
			}
		}
	}

	return &Result{Address: address}
}
