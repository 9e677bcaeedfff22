package rabbitmq

import "time"

// Option -.
type Option func(*Publisher)

// ConnWaitTime -.
func ConnWaitTime(timeout time.Duration) Option {
	return func(p *Publisher) {
		p.cfg.WaitTime = timeout
	}
}

// ConnAttempts -.
func ConnAttempts(attempts int) Option {
	return func(p *Publisher) {
		p.cfg.Attempts = attempts
	}
}
