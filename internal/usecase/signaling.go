package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lawmittr/signaling/internal/entity"
	"github.com/lawmittr/signaling/pkg/logger"
)

// Signaling is the root service: it owns the registry, the room directory
// and the active-call table, dispatches every inbound envelope and emits
// outbound ones through the router.
//
// One lock serializes all state mutation. Every operation inside it is a
// non-blocking in-memory step; outbound delivery only queues on the target's
// bounded channel, so a slow transport never stalls dispatch.
type Signaling struct {
	mu sync.Mutex

	log      logger.Interface
	registry *Registry
	rooms    *Rooms
	router   *Router
	calls    *CallTable
	events   EventPublisher

	offerTimeout time.Duration
	now          func() time.Time
	stopped      bool
}

// New -.
func New(l logger.Interface, opts ...Option) *Signaling {
	registry := NewRegistry()

	s := &Signaling{
		log:      l,
		registry: registry,
		rooms:    NewRooms(),
		router:   NewRouter(registry, l),
		calls:    NewCallTable(),
		now:      time.Now,
	}

	// Custom options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Connect registers a new transport connection with the service.
func (s *Signaling) Connect(p Peer) {
	connectedPeers.Inc()
	s.log.Debug("signaling - connect %s", p.ID())
}

// Disconnect tears down everything the connection touched: its identity
// binding, its room membership, and every call it participated in. The
// remaining party of each call gets exactly one call:ended.
func (s *Signaling) Disconnect(p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connectedPeers.Dec()
	s.rooms.Leave(p.ID())

	identity, ok := s.registry.Unregister(p.ID())
	if !ok {
		return
	}

	for _, c := range s.calls.EndAll(identity) {
		activeCalls.Dec()
		s.notifyEnded(c, identity, ReasonDisconnect)
	}

	s.log.Debug("signaling - disconnect %s (%s)", p.ID(), identity)
}

// Stop ends every active call and notifies both parties. Called once, on
// service shutdown, after the transport listener stops accepting.
func (s *Signaling) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	for _, c := range s.calls.All() {
		if _, err := s.calls.End(c.Initiator, c.Callee); err != nil {
			continue
		}

		activeCalls.Dec()
		s.notifyEnded(c, "", ReasonShutdown)
	}

	s.log.Info("signaling - stopped")
}

// Handle dispatches one inbound envelope. Errors are reported back to the
// sending connection as error envelopes; a stale renegotiation reply is an
// expected race outcome and is discarded without a response.
func (s *Signaling) Handle(p Peer, env entity.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A stopped service stays drained: no envelope may register state or
	// recreate a call while connections wind down.
	if s.stopped {
		err := fmt.Errorf("service is shutting down: %w", entity.ErrBadEnvelope)
		s.sendError(p, err)

		return err
	}

	var err error

	switch env.Type {
	case entity.TypeRegister:
		err = s.handleRegister(p, env)
	case entity.TypeRoomJoin:
		err = s.handleRoomJoin(p, env)
	case entity.TypeCallInitiate:
		err = s.handleInitiate(p, env)
	case entity.TypeCallAccept:
		err = s.handleAccept(p, env)
	case entity.TypeCallReject:
		err = s.handleReject(p, env)
	case entity.TypeCallEnd:
		err = s.handleEnd(p, env)
	case entity.TypeNegoNeeded:
		err = s.handleNegotiationNeeded(p, env)
	case entity.TypeNegoDone:
		err = s.handleNegotiationDone(p, env)
	case entity.TypeICECandidate:
		err = s.handleCandidate(p, env)
	case entity.TypeChatSend:
		err = s.handleChat(p, env)
	default:
		err = fmt.Errorf("envelope type %q: %w", env.Type, entity.ErrBadEnvelope)
	}

	if err == nil {
		return nil
	}

	if errors.Is(err, entity.ErrStaleEpoch) {
		staleEpochsDiscarded.Inc()
		s.log.Debug("signaling - %s", err)

		return nil
	}

	s.sendError(p, err)

	return err
}

func (s *Signaling) handleRegister(p Peer, env entity.Envelope) error {
	var payload entity.RegisterPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Identity == "" {
		return fmt.Errorf("register without identity: %w", entity.ErrBadEnvelope)
	}

	s.register(p, payload.Identity)

	return nil
}

func (s *Signaling) register(p Peer, identity string) {
	displaced := s.registry.Register(p, identity)
	if displaced != nil {
		// Last write wins, but the superseded connection is told so its
		// own view does not silently rot.
		s.router.Deliver(displaced, entity.Envelope{Type: entity.TypeReplaced, To: identity})
	}

	s.log.Info("signaling - registered %q on %s", identity, p.ID())
}

func (s *Signaling) handleRoomJoin(p Peer, env entity.Envelope) error {
	var payload entity.RoomJoinPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Room == "" {
		return fmt.Errorf("room join without room: %w", entity.ErrBadEnvelope)
	}

	// A join carrying an identity doubles as registration.
	if payload.Identity != "" {
		s.register(p, payload.Identity)
	}

	identity, ok := s.registry.IdentityOf(p.ID())
	if !ok {
		return fmt.Errorf("room join before registration: %w", entity.ErrBadEnvelope)
	}

	existing := s.rooms.Join(payload.Room, identity, p.ID())

	members := make([]string, len(existing))
	for i, m := range existing {
		members[i] = m.Identity
	}

	s.deliver(p, entity.TypeRoomJoined, entity.RoomJoinedPayload{Room: payload.Room, Members: members})

	joined, _ := json.Marshal(entity.MemberJoinedPayload{Identity: identity, ConnectionRef: p.ID()})
	for _, m := range existing {
		if peer, reachable := s.registry.Lookup(m.Identity); reachable {
			s.router.Deliver(peer, entity.Envelope{Type: entity.TypeMemberJoined, Payload: joined})
		}
	}

	return nil
}

func (s *Signaling) handleInitiate(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	if env.To == "" || env.To == from || len(env.Payload) == 0 {
		return fmt.Errorf("initiate needs a distinct target and an offer: %w", entity.ErrBadEnvelope)
	}

	// Target must be reachable before any record is created.
	if _, ok := s.registry.Lookup(env.To); !ok {
		return fmt.Errorf("initiate to %q: %w", env.To, entity.ErrTargetUnreachable)
	}

	c, err := s.calls.Initiate(from, env.To, env.Payload)
	if err != nil {
		return err
	}

	activeCalls.Inc()

	if err := s.router.Route(entity.Envelope{
		Type:    entity.TypeCallIncoming,
		From:    from,
		To:      env.To,
		Payload: env.Payload,
	}); err != nil {
		return err
	}

	if s.offerTimeout > 0 {
		callID := c.ID
		time.AfterFunc(s.offerTimeout, func() { s.expireOffer(callID) })
	}

	s.publish(EventCallInitiated, c, "")

	return nil
}

func (s *Signaling) handleAccept(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	c, err := s.calls.Accept(from, env.To)
	if err != nil {
		return err
	}

	if err := s.router.Route(entity.Envelope{
		Type:    entity.TypeCallAccepted,
		From:    from,
		To:      c.Initiator,
		Payload: env.Payload,
	}); err != nil {
		return err
	}

	s.publish(EventCallConnected, c, "")

	return nil
}

func (s *Signaling) handleReject(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	c, err := s.calls.Reject(from, env.To)
	if err != nil {
		return err
	}

	activeCalls.Dec()

	if err := s.router.Route(entity.Envelope{
		Type: entity.TypeCallRejected,
		From: from,
		To:   c.Initiator,
	}); err != nil {
		return err
	}

	s.publish(EventCallRejected, c, "")

	return nil
}

func (s *Signaling) handleEnd(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	c, err := s.calls.End(from, env.To)
	if err != nil {
		return err
	}

	activeCalls.Dec()
	s.notifyEnded(c, from, ReasonHangup)

	return nil
}

func (s *Signaling) handleNegotiationNeeded(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	if len(env.Payload) == 0 {
		return fmt.Errorf("renegotiate without offer: %w", entity.ErrBadEnvelope)
	}

	c, target, err := s.calls.NegotiationNeeded(from, env.To, env.Payload)
	if err != nil {
		return err
	}

	// The offer of record goes out tagged with the current epoch; under
	// glare this may be a resend of the winner's offer to the loser.
	return s.router.Route(entity.Envelope{
		Type:    entity.TypeNegoNeeded,
		From:    c.NegoOfferer,
		To:      target,
		Payload: c.PendingNegoOffer,
		Epoch:   c.Epoch,
	})
}

func (s *Signaling) handleNegotiationDone(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	_, offerer, err := s.calls.NegotiationDone(from, env.To, env.Epoch)
	if err != nil {
		return err
	}

	return s.router.Route(entity.Envelope{
		Type:    entity.TypeNegoFinal,
		From:    from,
		To:      offerer,
		Payload: env.Payload,
		Epoch:   env.Epoch,
	})
}

func (s *Signaling) handleCandidate(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	// Candidates only flow while a call record exists for the pair.
	if _, ok := s.calls.Lookup(from, env.To); !ok {
		return fmt.Errorf("candidate %s -> %s: %w", from, env.To, entity.ErrNoSuchCall)
	}

	return s.router.Route(entity.Envelope{
		Type:    entity.TypeICECandidate,
		From:    from,
		To:      env.To,
		Payload: env.Payload,
	})
}

func (s *Signaling) handleChat(p Peer, env entity.Envelope) error {
	from, err := s.sender(p)
	if err != nil {
		return err
	}

	var payload entity.ChatSendPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Message == "" {
		return fmt.Errorf("chat without message: %w", entity.ErrBadEnvelope)
	}

	message := entity.ChatMessagePayload{
		Message:   payload.Message,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}

	// Delivery to a gone peer is not an error: the echo below keeps the
	// sender's transcript consistent either way.
	raw, _ := json.Marshal(message)
	_ = s.router.Route(entity.Envelope{
		Type:    entity.TypeChatMessage,
		From:    from,
		To:      env.To,
		Payload: raw,
	})

	// The echo carries the sender's own identity so its transcript reads
	// like the peer's.
	message.IsSelf = true
	echo, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("chat echo: %w", err)
	}
	s.router.Deliver(p, entity.Envelope{Type: entity.TypeChatMessage, From: from, Payload: echo})

	return nil
}

func (s *Signaling) expireOffer(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	c, ok := s.calls.ExpireOffer(callID)
	if !ok {
		return
	}

	activeCalls.Dec()
	s.notifyEnded(c, "", ReasonTimeout)
	s.log.Info("signaling - offer timed out: %s -> %s", c.Initiator, c.Callee)
}

// notifyEnded routes call:ended to the parties still reachable. endedBy is
// the identity that caused the teardown; it is not notified. An empty
// endedBy notifies both sides.
func (s *Signaling) notifyEnded(c *entity.Call, endedBy, reason string) {
	for _, identity := range []string{c.Initiator, c.Callee} {
		if identity == endedBy {
			continue
		}

		_ = s.router.Route(entity.Envelope{
			Type: entity.TypeCallEnded,
			From: c.Other(identity),
			To:   identity,
		})
	}

	s.publish(EventCallEnded, c, reason)
}

func (s *Signaling) sender(p Peer) (string, error) {
	identity, ok := s.registry.IdentityOf(p.ID())
	if !ok {
		return "", fmt.Errorf("connection %s is not registered: %w", p.ID(), entity.ErrBadEnvelope)
	}

	return identity, nil
}

func (s *Signaling) deliver(p Peer, envType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error(fmt.Errorf("signaling - deliver - json.Marshal: %w", err))

		return
	}

	s.router.Deliver(p, entity.Envelope{Type: envType, Payload: raw})
}

func (s *Signaling) sendError(p Peer, err error) {
	s.deliver(p, entity.TypeError, entity.ErrorPayload{
		Kind:   entity.ErrorKind(err),
		Detail: err.Error(),
	})
}

// publish emits a call lifecycle event off the hot path. The feed is best
// effort: a broker hiccup is logged, never surfaced to clients.
func (s *Signaling) publish(event string, c *entity.Call, reason string) {
	if s.events == nil {
		return
	}

	body := CallEvent{
		CallID:    c.ID,
		Initiator: c.Initiator,
		Callee:    c.Callee,
		Reason:    reason,
	}

	go func() {
		if err := s.events.Publish(event, body); err != nil {
			s.log.Error(fmt.Errorf("signaling - publish %s: %w", event, err))
		}
	}()
}
