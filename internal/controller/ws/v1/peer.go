package v1

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawmittr/signaling/internal/entity"
	"github.com/lawmittr/signaling/internal/usecase"
	"github.com/lawmittr/signaling/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	_writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	_pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than _pongWait.
	_pingPeriod = (_pongWait * 9) / 10

	// Maximum message size allowed from peer. Session descriptions fit
	// comfortably under 64 KB.
	_maxMessageSize = 64 * 1024
)

// wsPeer is one websocket connection. It satisfies usecase.Peer: envelopes
// are queued on the buffered send channel and a dedicated writePump drains
// it, so the service never writes to the socket directly.
type wsPeer struct {
	id      string
	conn    *websocket.Conn
	send    chan entity.Envelope
	service *usecase.Signaling
	log     logger.Interface
}

var _ usecase.Peer = (*wsPeer)(nil)

// ID -.
func (p *wsPeer) ID() string {
	return p.id
}

// Deliver queues the envelope without blocking. A full queue means the
// client is not draining its socket; the envelope is dropped and the caller
// accounts for it.
func (p *wsPeer) Deliver(env entity.Envelope) bool {
	select {
	case p.send <- env:
		return true
	default:
		return false
	}
}

// readPump pumps envelopes from the websocket into the service. It is the
// connection's only reader and runs on the handler goroutine; exiting it
// tears the connection down.
func (p *wsPeer) readPump() {
	defer func() {
		p.service.Disconnect(p)
		close(p.send)
		p.conn.Close()
	}()

	p.conn.SetReadLimit(_maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(_pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(_pongWait))

		return nil
	})

	for {
		_, raw, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.log.Warn("ws - v1 - read %s: %s", p.id, err)
			}

			return
		}

		var env entity.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// A frame that is not an envelope gets a ProtocolError
			// back; the connection itself stays up.
			payload, _ := json.Marshal(entity.ErrorPayload{
				Kind:   entity.KindProtocolError,
				Detail: "envelope is not valid JSON",
			})
			p.Deliver(entity.Envelope{Type: entity.TypeError, Payload: payload})

			continue
		}

		_ = p.service.Handle(p, env)
	}
}

// writePump pumps envelopes from the send channel onto the websocket and
// keeps the connection alive with pings. It is the connection's only writer.
func (p *wsPeer) writePump() {
	ticker := time.NewTicker(_pingPeriod)

	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case env, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(_writeWait))

			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := p.conn.WriteJSON(env); err != nil {
				p.log.Warn("ws - v1 - write %s: %s", p.id, err)

				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(_writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
