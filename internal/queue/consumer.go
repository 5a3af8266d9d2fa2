package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConsumerConfig names the broker objects the consumer binds.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// StartEventConsumer connects to RabbitMQ, declares the topic exchange and a
// durable queue bound to every event routing key, and logs each delivery.
// It reconnects with exponential backoff and only returns once ctx is done.
func StartEventConsumer(ctx context.Context, cfg ConsumerConfig, log *zap.Logger) error {
	log = log.Named("event-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// DeclareTopology declares the durable topic exchange. Publishers and the
// consumer both call it; declarations are idempotent.
func DeclareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	return nil
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}
	if err := DeclareTopology(ch, cfg.Exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, key := range []string{RoutingSeedCompleted, RoutingBuildingChanged} {
		if err := ch.QueueBind(cfg.Queue, key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind %s: %w", key, err)
		}
	}

	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(log, d.RoutingKey, d.Body); err != nil {
				log.Warn("handle message failed", zap.String("routing_key", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and writes it to the log as a single
// structured entry. Unknown routing keys are an error.
func HandleMessage(log *zap.Logger, routingKey string, body []byte) error {
	switch routingKey {
	case RoutingSeedCompleted:
		var ev SeedCompletedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		log.Info("seed completed",
			zap.String("table", ev.Table),
			zap.String("outcome", ev.Outcome),
			zap.Int("before", ev.Before),
			zap.Int("after", ev.After),
			zap.Int("inserted", ev.Inserted),
			zap.String("instance", ev.Instance),
			zap.Time("completed_at", ev.CompletedAt))
	case RoutingBuildingChanged:
		var ev BuildingChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		log.Info("building changed",
			zap.Uint64("building_id", ev.BuildingID),
			zap.String("name", ev.Name),
			zap.String("action", ev.Action),
			zap.Uint64("changed_by", ev.ChangedBy),
			zap.Time("changed_at", ev.ChangedAt))
	default:
		return fmt.Errorf("unknown routing key %q", routingKey)
	}
	return nil
}
