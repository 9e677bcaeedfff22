// Package usecase implements the signaling business logic: presence,
// rooms, call lifecycle and envelope routing.
package usecase

import (
	"github.com/lawmittr/signaling/internal/entity"
)

type (
	// Peer is one live transport connection as seen by the service.
	//
	// Deliver queues an envelope for the connection and must never block:
	// implementations hold a bounded outbound queue and report false when
	// it is full. A slow consumer therefore loses envelopes instead of
	// stalling dispatch for everyone else.
	Peer interface {
		ID() string
		Deliver(env entity.Envelope) bool
	}

	// EventPublisher is the outbound port for the call lifecycle feed.
	EventPublisher interface {
		Publish(event string, body interface{}) error
	}
)
