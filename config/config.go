package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config -.
	Config struct {
		App       App       `yaml:"app"`
		HTTP      HTTP      `yaml:"http"`
		Log       Log       `yaml:"logger"`
		RMQ       RMQ       `yaml:"rabbitmq"`
		Signaling Signaling `yaml:"signaling"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION"`
	}

	// HTTP -.
	HTTP struct {
		Port string `env-required:"true" yaml:"port" env:"HTTP_PORT"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level" env:"LOG_LEVEL"`
	}

	// RMQ configures the optional call-event feed. Leaving URL empty
	// disables publishing entirely.
	RMQ struct {
		URL      string `yaml:"url"      env:"RMQ_URL"`
		Exchange string `yaml:"exchange" env:"RMQ_EXCHANGE"`
	}

	// Signaling -.
	Signaling struct {
		// OfferTimeout bounds how long a call may sit unanswered.
		// Zero leaves offers pending until explicitly rejected or ended.
		OfferTimeout time.Duration `yaml:"offer_timeout" env:"SIGNALING_OFFER_TIMEOUT"`
		// SendBuffer is the per-connection outbound envelope queue size.
		SendBuffer int `yaml:"send_buffer" env:"SIGNALING_SEND_BUFFER"`
	}
)

// NewConfig returns app config.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
