package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petspot/petspot-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher wraps payloads in an Event envelope and publishes them
// to one exchange, routed by event type.
type Publisher struct {
	channel  Channel
	exchange string
	source   string
	logger   *logger.Logger
}

// NewPublisher declares exchange on rmq and returns a publisher bound to it
func NewPublisher(rmq *RabbitMQ, exchange, source string, log *logger.Logger) (*Publisher, error) {
	if err := rmq.DeclareExchange(exchange); err != nil {
		return nil, err
	}
	return NewPublisherWithChannel(rmq.Channel(), exchange, source, log), nil
}

// NewPublisherWithChannel binds a publisher to an already prepared channel
func NewPublisherWithChannel(ch Channel, exchange, source string, log *logger.Logger) *Publisher {
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		source:   source,
		logger:   log,
	}
}

// Publish sends data as an eventType event. The context's correlation ID,
// when present, is copied onto both the envelope and the AMQP message.
func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	correlationID := CorrelationID(ctx)

	event, err := NewEvent(eventType, p.source, correlationID, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	msg, err := event.publishing()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, eventType, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Debug().
		Str("exchange", p.exchange).
		Str("event_type", eventType).
		Str("event_id", event.ID).
		Str("correlation_id", correlationID).
		Msg("event published")
	return nil
}

func (e *Event) publishing() (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     e.ID,
		CorrelationId: e.CorrelationID,
		Timestamp:     e.Timestamp,
		Type:          e.Type,
		AppId:         e.Source,
		Body:          body,
	}, nil
}

type correlationKey struct{}

// WithCorrelationID tags ctx so events published under it can be traced
// back to the originating request.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

// CorrelationID returns the ID set by WithCorrelationID, or ""
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
