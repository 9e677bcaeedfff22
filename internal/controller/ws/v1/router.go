// Package v1 implements routing paths. Each services in own file.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/lawmittr/signaling/internal/usecase"
	"github.com/lawmittr/signaling/pkg/logger"
)

// NewRouter -.
// Swagger spec:
// @title       Signaling Service API
// @description Presence, call negotiation and chat relay for two-party calls
// @version     1.0
// @host        localhost:8000
// @BasePath    /v1
func NewRouter(handler *gin.Engine, s *usecase.Signaling, l logger.Interface, opts ...Option) {
	// Options
	handler.Use(gin.Logger())
	handler.Use(gin.Recovery())

	// Swagger
	swaggerHandler := ginSwagger.DisablingWrapHandler(swaggerFiles.Handler, "DISABLE_SWAGGER_HTTP_HANDLER")
	handler.GET("/swagger/*any", swaggerHandler)

	// K8s probe
	handler.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	// Prometheus metrics
	handler.GET("/metrics", gin.WrapH(promhttp.Handler()))

	upgrader := &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// The browser client is served from another origin; identity is
		// not authenticated anyway (explicit non-goal).
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	// Routers
	h := handler.Group("/v1")
	{
		newSignalingRoutes(h, upgrader, s, l, opts...)
	}
}
