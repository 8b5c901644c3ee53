package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher writes reservation events to a durable queue. A nil *Publisher is
// valid and drops every event, so callers need no enabled/disabled checks.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	if queue == "" {
		queue = "fleetdesk.reservations"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		url:   url,
		queue: queue,
		log:   log.With(slog.String("component", "events.publisher")),
	}
}

// Publish sends the event as a persistent JSON message. Each call dials a
// fresh connection; reservation writes are low-volume enough that connection
// reuse is not worth the reconnect bookkeeping. Errors are logged and
// returned so callers can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	if p == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", slog.Any("err", err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", slog.Any("err", err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable queue so events survive broker restarts. Declare is idempotent.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", slog.Any("err", err), slog.String("queue", p.queue))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("event marshal failed", slog.Any("err", err), slog.String("kind", ev.Kind))
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("rabbitmq publish failed", slog.Any("err", err), slog.String("kind", ev.Kind))
		return err
	}

	p.log.Debug("event published", slog.String("kind", ev.Kind), slog.String("reservation_id", ev.ReservationID))
	return nil
}
