package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lawmittr/signaling/internal/entity"
)

// CallTable owns the active-call records and their state transitions,
// including the renegotiation epoch bookkeeping. At most one record exists
// per unordered identity pair; terminal transitions remove the record, so a
// later initiation starts fresh.
//
// Mutation is serialized by Signaling.
type CallTable struct {
	calls map[string]*entity.Call
}

// NewCallTable -.
func NewCallTable() *CallTable {
	return &CallTable{calls: make(map[string]*entity.Call)}
}

// Lookup -.
func (t *CallTable) Lookup(a, b string) (*entity.Call, bool) {
	c, ok := t.calls[entity.PairKey(a, b)]

	return c, ok
}

// Initiate creates the Offering record for the pair. The offer blob is held
// verbatim until answered.
func (t *CallTable) Initiate(from, to string, offer json.RawMessage) (*entity.Call, error) {
	key := entity.PairKey(from, to)
	if _, ok := t.calls[key]; ok {
		return nil, fmt.Errorf("initiate %s -> %s: %w", from, to, entity.ErrCallInProgress)
	}

	c := &entity.Call{
		ID:           uuid.NewString(),
		Initiator:    from,
		Callee:       to,
		State:        entity.StateOffering,
		PendingOffer: offer,
	}
	t.calls[key] = c

	return c, nil
}

// Accept moves the pair's call to Connected. Only the callee of the
// outstanding offer may accept.
func (t *CallTable) Accept(from, to string) (*entity.Call, error) {
	c, ok := t.Lookup(from, to)
	if !ok || c.State != entity.StateOffering || c.Callee != from || c.Initiator != to {
		return nil, fmt.Errorf("accept %s -> %s: %w", from, to, entity.ErrNoSuchCall)
	}

	c.State = entity.StateConnected
	c.PendingOffer = nil
	c.Epoch = 0

	return c, nil
}

// Reject declines an outstanding offer and removes the record.
func (t *CallTable) Reject(from, to string) (*entity.Call, error) {
	c, ok := t.Lookup(from, to)
	if !ok || c.State != entity.StateOffering || c.Callee != from {
		return nil, fmt.Errorf("reject %s -> %s: %w", from, to, entity.ErrNoSuchCall)
	}

	t.remove(c)

	return c, nil
}

// End removes the record for the pair in any non-terminal state.
func (t *CallTable) End(a, b string) (*entity.Call, error) {
	c, ok := t.Lookup(a, b)
	if !ok {
		return nil, fmt.Errorf("end %s -> %s: %w", a, b, entity.ErrNoSuchCall)
	}

	t.remove(c)

	return c, nil
}

// EndAll removes and returns every call the identity participates in.
// Used on disconnect teardown.
func (t *CallTable) EndAll(identity string) []*entity.Call {
	var ended []*entity.Call

	for key, c := range t.calls {
		if c.Has(identity) {
			delete(t.calls, key)
			ended = append(ended, c)
		}
	}

	return ended
}

// ExpireOffer ends the call with the given id if it is still Offering. The
// id check keeps a stale timer from killing a call that was recreated for
// the same pair.
func (t *CallTable) ExpireOffer(callID string) (*entity.Call, bool) {
	for key, c := range t.calls {
		if c.ID == callID {
			if c.State != entity.StateOffering {
				return nil, false
			}

			delete(t.calls, key)

			return c, true
		}
	}

	return nil, false
}

// All returns every active call. Used on service shutdown.
func (t *CallTable) All() []*entity.Call {
	calls := make([]*entity.Call, 0, len(t.calls))
	for _, c := range t.calls {
		calls = append(calls, c)
	}

	return calls
}

// NegotiationNeeded applies a renegotiation request from one side of a
// Connected call. It returns the call and the identity that must receive the
// offer of record; the caller builds the outbound envelope from
// call.NegoOfferer, call.PendingNegoOffer and call.Epoch.
//
// Glare is resolved deterministically: when both sides offer within the same
// cycle, the identity sorting lexicographically first is the offerer of
// record. The loser's offer is discarded and the loser receives the winning
// offer instead, so it answers rather than waits.
func (t *CallTable) NegotiationNeeded(from, to string, offer json.RawMessage) (*entity.Call, string, error) {
	c, ok := t.Lookup(from, to)
	if !ok || !c.Has(from) {
		return nil, "", fmt.Errorf("renegotiate %s -> %s: %w", from, to, entity.ErrNoSuchCall)
	}

	switch c.State {
	case entity.StateConnected:
		c.Epoch++
		c.State = entity.StateRenegotiating
		c.NegoOfferer = from
		c.PendingNegoOffer = offer

		return c, c.Other(from), nil

	case entity.StateRenegotiating:
		if c.NegoOfferer == from {
			// Same side offered again before the cycle settled: the
			// newest offer supersedes, under the next epoch.
			c.Epoch++
			c.PendingNegoOffer = offer

			return c, c.Other(from), nil
		}

		if from < c.NegoOfferer {
			c.NegoOfferer = from
			c.PendingNegoOffer = offer

			return c, c.Other(from), nil
		}

		// Incoming offer loses the tie-break: resend the winning offer
		// to its sender.
		return c, from, nil

	default:
		return nil, "", fmt.Errorf("renegotiate %s -> %s before answer: %w", from, to, entity.ErrBadEnvelope)
	}
}

// NegotiationDone settles a renegotiation cycle. The answer is accepted only
// from the non-offerer and only for the current epoch; anything older is
// stale and discarded. Returns the identity the final answer routes to.
func (t *CallTable) NegotiationDone(from, to string, epoch uint64) (*entity.Call, string, error) {
	c, ok := t.Lookup(from, to)
	if !ok || !c.Has(from) {
		return nil, "", fmt.Errorf("negotiation done %s -> %s: %w", from, to, entity.ErrNoSuchCall)
	}

	if c.State != entity.StateRenegotiating || epoch != c.Epoch {
		return nil, "", fmt.Errorf("negotiation done %s -> %s epoch %d (current %d): %w",
			from, to, epoch, c.Epoch, entity.ErrStaleEpoch)
	}

	if from == c.NegoOfferer {
		return nil, "", fmt.Errorf("negotiation done from offerer %s: %w", from, entity.ErrBadEnvelope)
	}

	offerer := c.NegoOfferer
	c.State = entity.StateConnected
	c.NegoOfferer = ""
	c.PendingNegoOffer = nil

	return c, offerer, nil
}

func (t *CallTable) remove(c *entity.Call) {
	delete(t.calls, entity.PairKey(c.Initiator, c.Callee))
}
