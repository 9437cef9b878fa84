package messaging

import (
	"fmt"
	"sync"

	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ owns a single publishing connection and channel.
// The broker closing it is recorded and surfaced through Health.
type RabbitMQ struct {
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	lost    error
	logger  *logger.Logger
}

// New dials the broker and opens the channel used for publishing
func New(cfg *config.RabbitMQConfig, connectionName string, log *logger.Logger) (*RabbitMQ, error) {
	dial := amqp.Config{
		Heartbeat:  cfg.Heartbeat,
		Properties: amqp.NewConnectionProperties(),
	}
	dial.Properties.SetClientConnectionName(connectionName)

	conn, err := amqp.DialConfig(cfg.URL, dial)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	r := &RabbitMQ{
		conn:    conn,
		channel: ch,
		logger:  log.WithComponent("rabbitmq"),
	}
	go r.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))

	r.logger.Info().Str("connection_name", connectionName).Msg("connected to RabbitMQ")
	return r, nil
}

func (r *RabbitMQ) watch(closed <-chan *amqp.Error) {
	amqpErr, ok := <-closed
	if !ok || amqpErr == nil {
		return
	}

	r.mu.Lock()
	r.lost = amqpErr
	r.mu.Unlock()

	r.logger.Error().Err(amqpErr).Msg("RabbitMQ connection lost")
}

// Channel returns the publishing channel
func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// DeclareExchange declares a durable, non-internal topic exchange
func (r *RabbitMQ) DeclareExchange(name string) error {
	if err := r.Channel().ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", name, err)
	}
	return nil
}

// Health reports "down" once the broker has dropped the connection
func (r *RabbitMQ) Health() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case r.lost != nil:
		return map[string]string{"status": "down", "error": r.lost.Error()}
	case r.conn == nil || r.conn.IsClosed():
		return map[string]string{"status": "down", "error": "connection closed"}
	default:
		return map[string]string{"status": "up"}
	}
}

// Close closes the channel and then the connection
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("failed to close channel")
		}
		r.channel = nil
	}
	if r.conn == nil {
		return nil
	}

	err := r.conn.Close()
	r.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	r.logger.Info().Msg("RabbitMQ connection closed")
	return nil
}
