package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKeyIsUnordered(t *testing.T) {
	require.Equal(t, PairKey("a@x", "b@x"), PairKey("b@x", "a@x"))
	require.NotEqual(t, PairKey("a@x", "b@x"), PairKey("a@x", "c@x"))
}

func TestCallOther(t *testing.T) {
	c := &Call{Initiator: "a@x", Callee: "b@x"}

	require.Equal(t, "b@x", c.Other("a@x"))
	require.Equal(t, "a@x", c.Other("b@x"))
	require.True(t, c.Has("a@x"))
	require.False(t, c.Has("c@x"))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{ErrTargetUnreachable, KindTargetUnreachable},
		{ErrNoSuchCall, KindNoSuchCall},
		{ErrCallInProgress, KindCallInProgress},
		{ErrBadEnvelope, KindProtocolError},
		{errors.New("anything else"), KindProtocolError},
		{fmt.Errorf("wrapped: %w", ErrNoSuchCall), KindNoSuchCall},
	}

	for _, tt := range tests {
		require.Equal(t, tt.kind, ErrorKind(tt.err), tt.err.Error())
	}
}
