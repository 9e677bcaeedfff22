package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomsJoinReturnsMembersInJoinOrder(t *testing.T) {
	r := NewRooms()

	require.Empty(t, r.Join("r1", "a@x", "conn-a"))
	require.Empty(t, r.Join("r2", "z@x", "conn-z"))

	existing := r.Join("r1", "b@x", "conn-b")
	require.Len(t, existing, 1)
	require.Equal(t, "a@x", existing[0].Identity)

	existing = r.Join("r1", "c@x", "conn-c")
	require.Equal(t, []Member{
		{Identity: "a@x", ConnectionRef: "conn-a"},
		{Identity: "b@x", ConnectionRef: "conn-b"},
	}, existing)
}

func TestRoomsJoinMovesConnection(t *testing.T) {
	r := NewRooms()

	r.Join("r1", "a@x", "conn-a")
	r.Join("r1", "b@x", "conn-b")
	r.Join("r2", "a@x", "conn-a")

	// b is alone in r1 now.
	existing := r.Join("r1", "c@x", "conn-c")
	require.Len(t, existing, 1)
	require.Equal(t, "b@x", existing[0].Identity)
}

func TestRoomsLeave(t *testing.T) {
	r := NewRooms()

	r.Join("r1", "a@x", "conn-a")
	r.Join("r1", "b@x", "conn-b")

	room, ok := r.Leave("conn-a")
	require.True(t, ok)
	require.Equal(t, "r1", room)

	_, ok = r.Leave("conn-a")
	require.False(t, ok)

	existing := r.Join("r1", "c@x", "conn-c")
	require.Len(t, existing, 1)
	require.Equal(t, "b@x", existing[0].Identity)
}
