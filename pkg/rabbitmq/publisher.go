// Package rabbitmq implements a one-way AMQP event publisher.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const (
	_messageType = "type"

	_defaultWaitTime = 2 * time.Second
	_defaultAttempts = 10
)

// Config -.
type Config struct {
	URL      string
	Exchange string
	WaitTime time.Duration
	Attempts int
}

// Publisher maintains one AMQP channel and publishes JSON-encoded events to a
// fanout exchange, tagging each message with its event type header.
type Publisher struct {
	cfg Config

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// New -.
func New(url, exchange string, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		cfg: Config{
			URL:      url,
			Exchange: exchange,
			WaitTime: _defaultWaitTime,
			Attempts: _defaultAttempts,
		},
	}

	// Custom options
	for _, opt := range opts {
		opt(p)
	}

	err := p.attemptConnect()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq - New - p.attemptConnect: %w", err)
	}

	return p, nil
}

func (p *Publisher) attemptConnect() error {
	var err error
	for i := p.cfg.Attempts; i > 0; i-- {
		if err = p.connect(); err == nil {
			break
		}

		log.Printf("RabbitMQ is trying to connect, attempts left: %d", i)
		time.Sleep(p.cfg.WaitTime)
	}

	if err != nil {
		return fmt.Errorf("rabbitmq - attemptConnect - p.connect: %w", err)
	}

	return nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("amqp.Dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()

		return fmt.Errorf("conn.Channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.cfg.Exchange,
		"fanout",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()

		return fmt.Errorf("channel.ExchangeDeclare: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.mu.Unlock()

	return nil
}

// Publish -.
func (p *Publisher) Publish(event string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rabbitmq - Publish - json.Marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(p.cfg.Exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Headers:     amqp.Table{_messageType: event},
		Timestamp:   time.Now(),
		Body:        raw,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq - Publish - channel.Publish: %w", err)
	}

	return nil
}

// Close -.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}

	err := p.conn.Close()
	if err != nil {
		return fmt.Errorf("rabbitmq - Close - conn.Close: %w", err)
	}

	return nil
}
