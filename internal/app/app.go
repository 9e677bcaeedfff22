// Package app configures and runs application.
package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/lawmittr/signaling/config"
	v1 "github.com/lawmittr/signaling/internal/controller/ws/v1"
	"github.com/lawmittr/signaling/internal/usecase"
	"github.com/lawmittr/signaling/pkg/httpserver"
	"github.com/lawmittr/signaling/pkg/logger"
	"github.com/lawmittr/signaling/pkg/rabbitmq"
)

// Run creates objects via constructors.
func Run(cfg *config.Config) {
	l := logger.New(cfg.Log.Level)

	// Use case
	opts := []usecase.Option{
		usecase.OfferTimeout(cfg.Signaling.OfferTimeout),
	}

	if cfg.RMQ.URL != "" {
		publisher, err := rabbitmq.New(cfg.RMQ.URL, cfg.RMQ.Exchange)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - rabbitmq.New: %w", err))
		}
		defer publisher.Close()

		opts = append(opts, usecase.Events(publisher))
	}

	signalingUseCase := usecase.New(l, opts...)

	// HTTP Server
	handler := gin.New()
	v1.NewRouter(handler, signalingUseCase, l, v1.SendBuffer(cfg.Signaling.SendBuffer))
	httpServer := httpserver.New(handler, httpserver.Port(cfg.HTTP.Port))

	l.Info("app - Run - %s %s listening on :%s", cfg.App.Name, cfg.App.Version, cfg.HTTP.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: " + s.String())
	case err := <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	signalingUseCase.Stop()

	err := httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}
}
