package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lawmittr/signaling/internal/entity"
	"github.com/lawmittr/signaling/internal/usecase"
	"github.com/lawmittr/signaling/pkg/logger"
)

const _defaultSendBuffer = 32

type signalingRoutes struct {
	l          logger.Interface
	u          *websocket.Upgrader
	s          *usecase.Signaling
	sendBuffer int
}

func newSignalingRoutes(handler *gin.RouterGroup, upgrader *websocket.Upgrader, s *usecase.Signaling, l logger.Interface, opts ...Option) {
	r := &signalingRoutes{l: l, u: upgrader, s: s, sendBuffer: _defaultSendBuffer}

	// Custom options
	for _, opt := range opts {
		opt(r)
	}

	handler.GET("/ws", r.websocketHandler)
}

// websocketHandler upgrades the HTTP request and runs the connection's read
// loop until the client goes away.
func (r *signalingRoutes) websocketHandler(c *gin.Context) {
	conn, err := r.u.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.l.Error(err, "ws - v1 - upgrade")

		return
	}

	peer := &wsPeer{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan entity.Envelope, r.sendBuffer),
		service: r.s,
		log:     r.l,
	}

	r.s.Connect(peer)

	go peer.writePump()
	peer.readPump()
}
