package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/queue"
)

// EventPublisher publishes JSON events. Implementations must not panic;
// errors are returned so callers can choose to ignore them.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Publisher publishes events to a RabbitMQ topic exchange. It dials per
// call: events are rare (startup, admin edits) and a short-lived
// connection survives broker restarts without any reconnect logic.
type Publisher struct {
	url      string
	exchange string
	log      *zap.Logger
}

// NewPublisher returns a Publisher, or nil when url is empty so callers can
// treat a missing broker as "publishing disabled".
func NewPublisher(url, exchange string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, exchange: exchange, log: log.Named("publisher")}
}

// Publish marshals event and sends it with the given routing key as a
// persistent message. A nil *Publisher is a no-op.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("marshal event failed", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := queue.DeclareTopology(ch, p.exchange); err != nil {
		p.log.Warn("declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	return nil
}
