package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lawmittr/signaling/internal/entity"
)

var (
	offerA  = json.RawMessage(`{"offer":{"sdp":"from-a"}}`)
	offerB  = json.RawMessage(`{"offer":{"sdp":"from-b"}}`)
	offerA2 = json.RawMessage(`{"offer":{"sdp":"from-a-2"}}`)
)

func connectedCall(t *testing.T, table *CallTable, a, b string) *entity.Call {
	t.Helper()

	_, err := table.Initiate(a, b, offerA)
	require.NoError(t, err)

	c, err := table.Accept(b, a)
	require.NoError(t, err)
	require.Equal(t, entity.StateConnected, c.State)

	return c
}

func TestCallInitiateAndAccept(t *testing.T) {
	table := NewCallTable()

	c, err := table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)
	require.Equal(t, entity.StateOffering, c.State)
	require.Equal(t, "a@x", c.Initiator)
	require.Equal(t, offerA, c.PendingOffer)

	c, err = table.Accept("b@x", "a@x")
	require.NoError(t, err)
	require.Equal(t, entity.StateConnected, c.State)
	require.Nil(t, c.PendingOffer)
	require.Zero(t, c.Epoch)
}

func TestCallDuplicateInitiate(t *testing.T) {
	table := NewCallTable()

	first, err := table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)

	// Same pair from either direction is a duplicate.
	_, err = table.Initiate("a@x", "b@x", offerA2)
	require.ErrorIs(t, err, entity.ErrCallInProgress)

	_, err = table.Initiate("b@x", "a@x", offerB)
	require.ErrorIs(t, err, entity.ErrCallInProgress)

	// The existing record is untouched.
	c, ok := table.Lookup("a@x", "b@x")
	require.True(t, ok)
	require.Same(t, first, c)
	require.Equal(t, offerA, c.PendingOffer)
}

func TestCallAcceptGuards(t *testing.T) {
	table := NewCallTable()

	_, err := table.Accept("b@x", "a@x")
	require.ErrorIs(t, err, entity.ErrNoSuchCall)

	_, err = table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)

	// Only the callee accepts; the initiator accepting its own offer is
	// a pair mismatch.
	_, err = table.Accept("a@x", "b@x")
	require.ErrorIs(t, err, entity.ErrNoSuchCall)
}

func TestCallRejectRemovesRecord(t *testing.T) {
	table := NewCallTable()

	_, err := table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)

	c, err := table.Reject("b@x", "a@x")
	require.NoError(t, err)
	require.Equal(t, "a@x", c.Initiator)

	_, ok := table.Lookup("a@x", "b@x")
	require.False(t, ok)

	// A rejected pair can call again, fresh.
	fresh, err := table.Initiate("b@x", "a@x", offerB)
	require.NoError(t, err)
	require.NotEqual(t, c.ID, fresh.ID)
}

func TestCallEnd(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	_, err := table.End("a@x", "b@x")
	require.NoError(t, err)

	_, err = table.End("a@x", "b@x")
	require.ErrorIs(t, err, entity.ErrNoSuchCall)
}

func TestCallEndAll(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")
	connectedCall(t, table, "a@x", "c@x")
	connectedCall(t, table, "d@x", "e@x")

	ended := table.EndAll("a@x")
	require.Len(t, ended, 2)

	_, ok := table.Lookup("d@x", "e@x")
	require.True(t, ok)
}

func TestNegotiationEpochsAreMonotonic(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	c, target, err := table.NegotiationNeeded("a@x", "b@x", offerA)
	require.NoError(t, err)
	require.Equal(t, "b@x", target)
	require.Equal(t, uint64(1), c.Epoch)
	require.Equal(t, entity.StateRenegotiating, c.State)

	_, offerer, err := table.NegotiationDone("b@x", "a@x", 1)
	require.NoError(t, err)
	require.Equal(t, "a@x", offerer)
	require.Equal(t, entity.StateConnected, c.State)

	c, _, err = table.NegotiationNeeded("a@x", "b@x", offerA2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), c.Epoch)
}

func TestNegotiationDoneStaleEpoch(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	_, _, err := table.NegotiationNeeded("a@x", "b@x", offerA)
	require.NoError(t, err)

	// Re-offer bumps the epoch; the reply to the first offer is stale.
	c, _, err := table.NegotiationNeeded("a@x", "b@x", offerA2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), c.Epoch)

	_, _, err = table.NegotiationDone("b@x", "a@x", 1)
	require.ErrorIs(t, err, entity.ErrStaleEpoch)
	require.Equal(t, entity.StateRenegotiating, c.State)

	// A reply after the cycle settled is stale too.
	_, _, err = table.NegotiationDone("b@x", "a@x", 2)
	require.NoError(t, err)
	_, _, err = table.NegotiationDone("b@x", "a@x", 2)
	require.ErrorIs(t, err, entity.ErrStaleEpoch)
}

func TestNegotiationDoneFromOfferer(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	_, _, err := table.NegotiationNeeded("a@x", "b@x", offerA)
	require.NoError(t, err)

	_, _, err = table.NegotiationDone("a@x", "b@x", 1)
	require.ErrorIs(t, err, entity.ErrBadEnvelope)
}

func TestNegotiationBeforeAnswer(t *testing.T) {
	table := NewCallTable()

	_, err := table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)

	_, _, err = table.NegotiationNeeded("a@x", "b@x", offerA2)
	require.ErrorIs(t, err, entity.ErrBadEnvelope)
}

func TestGlareLowerIdentityAlreadyOfferer(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	c, target, err := table.NegotiationNeeded("a@x", "b@x", offerA)
	require.NoError(t, err)
	require.Equal(t, "b@x", target)

	// b offers simultaneously and loses the tie-break: its offer is
	// discarded and the winning offer is resent to b.
	c, target, err = table.NegotiationNeeded("b@x", "a@x", offerB)
	require.NoError(t, err)
	require.Equal(t, "b@x", target)
	require.Equal(t, "a@x", c.NegoOfferer)
	require.Equal(t, offerA, c.PendingNegoOffer)
	require.Equal(t, uint64(1), c.Epoch)
}

func TestGlareLowerIdentityTakesOver(t *testing.T) {
	table := NewCallTable()
	connectedCall(t, table, "a@x", "b@x")

	c, target, err := table.NegotiationNeeded("b@x", "a@x", offerB)
	require.NoError(t, err)
	require.Equal(t, "a@x", target)
	require.Equal(t, "b@x", c.NegoOfferer)

	// a offers into the glare and wins: its offer becomes the offer of
	// record for the same epoch.
	c, target, err = table.NegotiationNeeded("a@x", "b@x", offerA)
	require.NoError(t, err)
	require.Equal(t, "b@x", target)
	require.Equal(t, "a@x", c.NegoOfferer)
	require.Equal(t, offerA, c.PendingNegoOffer)
	require.Equal(t, uint64(1), c.Epoch)

	// Only b, the non-offerer of record, may settle the cycle.
	_, offerer, err := table.NegotiationDone("b@x", "a@x", 1)
	require.NoError(t, err)
	require.Equal(t, "a@x", offerer)
}

func TestExpireOffer(t *testing.T) {
	table := NewCallTable()

	c, err := table.Initiate("a@x", "b@x", offerA)
	require.NoError(t, err)

	expired, ok := table.ExpireOffer(c.ID)
	require.True(t, ok)
	require.Equal(t, c.ID, expired.ID)

	_, ok = table.Lookup("a@x", "b@x")
	require.False(t, ok)

	// A timer for a call that got answered must not fire teardown.
	c2 := connectedCall(t, table, "a@x", "b@x")
	_, ok = table.ExpireOffer(c2.ID)
	require.False(t, ok)
	_, ok = table.Lookup("a@x", "b@x")
	require.True(t, ok)
}
