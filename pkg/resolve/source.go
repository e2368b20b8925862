package resolve

import "context"

// Source is one place an address name may come from.
//
// Lookup never returns an error: a source that cannot answer reports an
// absent or failed Candidate instead, since "no answer" is a first-class
// outcome the engine selects over, not an exceptional path.
type Source interface {
	Lookup(ctx context.Context, address string) Candidate
	String() string
}

// Sources is a set of sources queried together.
type Sources []Source
