package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedPeers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "connected_peers",
		Help:      "Number of live websocket connections.",
	})

	activeCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "active_calls",
		Help:      "Number of call records in the active-call table.",
	})

	envelopesRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "envelopes_routed_total",
		Help:      "Envelopes queued for delivery, by envelope type.",
	}, []string{"type"})

	envelopesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "envelopes_dropped_total",
		Help:      "Envelopes dropped because a peer's outbound queue was full.",
	})

	staleEpochsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "stale_epochs_discarded_total",
		Help:      "Renegotiation replies discarded for carrying a superseded epoch.",
	})
)
