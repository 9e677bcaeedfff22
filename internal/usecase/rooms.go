package usecase

// Member is one room member in join order.
type Member struct {
	Identity      string
	ConnectionRef string
}

// Rooms is the room directory: room id to insertion-ordered members. Rooms
// are created on first join and never destroyed; an abandoned room is just an
// empty set. Like Registry, mutation is serialized by Signaling.
type Rooms struct {
	members map[string][]Member
	byConn  map[string]string
}

// NewRooms -.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string][]Member),
		byConn:  make(map[string]string),
	}
}

// Join adds the connection to the room and returns the members that were
// already there, in join order. A connection belongs to one room at a time:
// joining another room moves it.
func (r *Rooms) Join(room, identity, connID string) []Member {
	if prev, ok := r.byConn[connID]; ok && prev != room {
		r.remove(prev, connID)
	}

	existing := make([]Member, len(r.members[room]))
	copy(existing, r.members[room])

	r.members[room] = append(r.members[room], Member{Identity: identity, ConnectionRef: connID})
	r.byConn[connID] = room

	return existing
}

// Leave drops the connection's membership, if any. No departure event is
// broadcast; peers learn about a gone member through call teardown.
func (r *Rooms) Leave(connID string) (room string, ok bool) {
	room, ok = r.byConn[connID]
	if !ok {
		return "", false
	}

	delete(r.byConn, connID)
	r.remove(room, connID)

	return room, true
}

func (r *Rooms) remove(room, connID string) {
	members := r.members[room]
	for i, m := range members {
		if m.ConnectionRef == connID {
			r.members[room] = append(members[:i], members[i+1:]...)

			return
		}
	}
}
