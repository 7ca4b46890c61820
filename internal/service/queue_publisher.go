package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/iliyamo/exam-seat-allocator/internal/queue"
)

const (
	defaultDialTimeout = 5 * time.Second
	minDialTimeout     = 100 * time.Millisecond
)

// AMQPPublisher publishes domain events to RabbitMQ.  Each publish dials
// its own connection; auto-allocate runs are rare enough that a pooled
// channel is not worth the reconnect bookkeeping.
type AMQPPublisher struct {
	url string
	log zerolog.Logger
}

func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log}
}

// dialTimeout is what is left of ctx's deadline, or defaultDialTimeout
// when ctx has none.
func dialTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	left := time.Until(deadline)
	if left < minDialTimeout {
		return minDialTimeout
	}
	return left
}

// PublishAllocationCompleted sends event to the allocation.completed queue
// as a persistent JSON message.  The dial honours ctx's deadline.  Errors
// are returned, not logged; the caller decides how loud a lost event is.
func (p *AMQPPublisher) PublishAllocationCompleted(ctx context.Context, event q.AllocationCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout(ctx))})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(q.AllocationCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.AllocationCompletedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.Debug().Str("event_id", event.EventID).Msg("allocation.completed published")
	return nil
}
