package entity

import "encoding/json"

// CallState -.
type CallState int

// Call lifecycle. Idle and the terminal states have no constant: a call in
// those states has no record in the active-call table.
const (
	StateOffering CallState = iota + 1
	StateConnected
	StateRenegotiating
)

func (s CallState) String() string {
	switch s {
	case StateOffering:
		return "offering"
	case StateConnected:
		return "connected"
	case StateRenegotiating:
		return "renegotiating"
	default:
		return "unknown"
	}
}

// Call is the record for one active or in-progress call between two
// identities. There is at most one per unordered identity pair.
type Call struct {
	ID        string
	Initiator string
	Callee    string
	State     CallState

	// PendingOffer holds the initiator's offer while the call is Offering.
	PendingOffer json.RawMessage

	// Epoch counts renegotiation cycles. Replies carrying an older epoch
	// are stale and must be discarded.
	Epoch uint64

	// NegoOfferer and PendingNegoOffer identify the offer of record while
	// Renegotiating; glare resolution may replace them.
	NegoOfferer      string
	PendingNegoOffer json.RawMessage
}

// Other returns the peer identity opposite the given one.
func (c *Call) Other(identity string) string {
	if identity == c.Initiator {
		return c.Callee
	}

	return c.Initiator
}

// Has reports whether the identity participates in the call.
func (c *Call) Has(identity string) bool {
	return identity == c.Initiator || identity == c.Callee
}

// PairKey builds the canonical key for an unordered identity pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}

	return a + "\x00" + b
}
