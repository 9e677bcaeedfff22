package usecase

import (
	"fmt"

	"github.com/lawmittr/signaling/internal/entity"
	"github.com/lawmittr/signaling/pkg/logger"
)

// Router resolves envelope targets against the registry and queues envelopes
// on the target's outbound channel. Envelopes for the same target keep their
// arrival order because every Route call happens under the service lock and
// the peer queue is FIFO.
type Router struct {
	registry *Registry
	log      logger.Interface
}

// NewRouter -.
func NewRouter(registry *Registry, l logger.Interface) *Router {
	return &Router{
		registry: registry,
		log:      l,
	}
}

// Route delivers the envelope to the connection registered for env.To. An
// unknown or gone target is reported, never silently dropped.
func (r *Router) Route(env entity.Envelope) error {
	p, ok := r.registry.Lookup(env.To)
	if !ok {
		return fmt.Errorf("route %s to %q: %w", env.Type, env.To, entity.ErrTargetUnreachable)
	}

	r.Deliver(p, env)

	return nil
}

// Deliver queues the envelope on an explicit peer, bypassing identity
// resolution. Used for responses and echoes to the sending connection.
func (r *Router) Deliver(p Peer, env entity.Envelope) {
	if !p.Deliver(env) {
		envelopesDropped.Inc()
		r.log.Warn("router - dropped %s for connection %s: outbound queue full", env.Type, p.ID())

		return
	}

	envelopesRouted.WithLabelValues(env.Type).Inc()
}
