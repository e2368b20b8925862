package resolve

import "context"

// WellKnown holds names for some well-known Ripple addresses.
var WellKnown = map[string]string{
	"rfYv1TXnwgDDK4WQNbFALykYuEBnrR4pDX": "Dividend Rippler",
	"rNPRNzBB92BVpAhhZr4iXDTveCgV5Pofm9": "Ripple Israel",
	"r3ADD8kXSUKHd6zTCKfnKT3zV9EZHjzp1S": "Ripple Union",
	"rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B":  "Bitstamp",
	"razqQKzJRdB4UxFPWf5NEpEG3WMkmwgcXA": "RippleChina",
	"rnuF96W4SZoCJmbHYBFoJZpR8eCaxNvekK": "RippleCN",
	"rJHygWcTLVpSXkowott6kzgZU6viQSVYM1": "Justcoin",
	"rGDWKWni6exeneJdNbEZ3nVX3Rrw5VG1p1": "Goodwill LETS",
	"rMwjYedjc7qqtKYVLiAccJSmCwih4LnE2q": "SnapSwap",
	"ra9eZxMbJrUcgV8ui7aPc161FgrqWScQxV": "Peercover",
}

// Mapping is a source backed by a static address-to-name table, loaded once
// at startup and read-only from then on. A table hit outranks every other
// source. Absence is not an error; the mapping source never fails.
type Mapping struct {
	Table map[string]string
}

// String is a custom printer for debugging purposes.
func (s *Mapping) String() string {
	return "mapping"
}

// Lookup checks the table for the address. No I/O, completes immediately.
func (s *Mapping) Lookup(ctx context.Context, address string) Candidate {
	name, ok := s.Table[address]
	if !ok {
		return absent(s.String())
	}
	return found(s.String(), TagMapping, name)
}
