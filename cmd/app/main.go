package main

import (
	"log"

	"github.com/lawmittr/signaling/config"
	"github.com/lawmittr/signaling/internal/app"
)

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	app.Run(cfg)
}
