package resolve

// Tag identifies what kind of name a candidate carries, and doubles as the
// unit of the engine's priority order.
type Tag = string

var (
	// TagMapping marks a name from the static well-known table.
	TagMapping = Tag("mapping")

	// TagXName marks an x-name from a verified domain's identity file.
	TagXName = Tag("x-name")

	// TagNickname marks a name registered with the nickname registrar.
	TagNickname = Tag("nickname")

	// TagDomain marks the bare name of a verified domain.
	TagDomain = Tag("domain")
)

// State of a candidate.
type State = string

var (
	// StateFound means the source produced a name.
	StateFound = State("found")

	// StateAbsent means the source completed without a name. Absence is an
	// expected outcome, not a failure.
	StateAbsent = State("absent")

	// StateFailed means the source could not complete (network error, bad
	// response, ...). Failures never propagate; they only mean this source
	// contributes no name.
	StateFailed = State("failed")
)

// Candidate is one source's attempt at naming an address. It lives for a
// single resolution and is never persisted.
type Candidate struct {
	Source string `json:"source"`
	State  State  `json:"state"`
	Tag    Tag    `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func found(source string, tag Tag, name string) Candidate {
	return Candidate{Source: source, State: StateFound, Tag: tag, Name: name}
}

func absent(source string) Candidate {
	return Candidate{Source: source, State: StateAbsent}
}

func failed(source string, err error) Candidate {
	return Candidate{Source: source, State: StateFailed, Reason: err.Error()}
}
