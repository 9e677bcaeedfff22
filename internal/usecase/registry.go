package usecase

// Registry maps identities to live connections and back. A connection holds
// at most one identity; an identity points at exactly one connection, with
// later registrations silently superseding earlier ones.
//
// Registry is not safe for concurrent use on its own; Signaling serializes
// every mutation behind its lock.
type Registry struct {
	byIdentity map[string]Peer
	byConn     map[string]string
}

// NewRegistry -.
func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]Peer),
		byConn:     make(map[string]string),
	}
}

// Register binds identity to p, last write wins. If another live connection
// held the identity it is returned so the caller can tell it that its
// binding is gone. Re-registering the same connection under a new identity
// releases the old one.
func (r *Registry) Register(p Peer, identity string) (displaced Peer) {
	if prev, ok := r.byConn[p.ID()]; ok && prev != identity {
		delete(r.byIdentity, prev)
	}

	if old, ok := r.byIdentity[identity]; ok && old.ID() != p.ID() {
		displaced = old
		delete(r.byConn, old.ID())
	}

	r.byIdentity[identity] = p
	r.byConn[p.ID()] = identity

	return displaced
}

// Lookup -.
func (r *Registry) Lookup(identity string) (Peer, bool) {
	p, ok := r.byIdentity[identity]

	return p, ok
}

// IdentityOf returns the identity registered by the given connection.
func (r *Registry) IdentityOf(connID string) (string, bool) {
	identity, ok := r.byConn[connID]

	return identity, ok
}

// Unregister removes every entry keyed by or mapping to the connection.
// Called exactly once, on disconnect.
func (r *Registry) Unregister(connID string) (identity string, ok bool) {
	identity, ok = r.byConn[connID]
	if !ok {
		return "", false
	}

	delete(r.byConn, connID)

	// A later registration may have taken the identity over; only drop the
	// identity entry if it still points at this connection.
	if p, bound := r.byIdentity[identity]; bound && p.ID() == connID {
		delete(r.byIdentity, identity)
	}

	return identity, true
}
