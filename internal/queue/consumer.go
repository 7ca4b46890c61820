package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditLogFile is the file, under the consumer's log directory, that
// receives one line per allocation.completed event.
const AuditLogFile = "allocation.log"

// Consumer appends allocation.completed events to an audit log.
type Consumer struct {
	URL    string // broker URL
	LogDir string // directory holding AuditLogFile
	Log    zerolog.Logger
}

// Run connects to RabbitMQ, declares the allocation.completed queue
// (durable) and consumes until ctx is cancelled.  Dial failures and broken
// connections are retried with exponential backoff capped at 30s, so the
// server keeps running while the broker is away.  Run returns ctx.Err()
// once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(AllocationCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(AllocationCompletedQueue, "", false, false, false, false, nil)
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
			if err := c.handle(d.Body); err != nil {
				c.Log.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev AllocationCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return AppendAudit(c.LogDir, ev)
}

// AppendAudit writes one FormatAudit line to dir/AuditLogFile, creating
// the directory and file when missing.
func AppendAudit(dir string, ev AllocationCompletedEvent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, AuditLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAudit(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAudit renders ev as a single newline-terminated line.
func FormatAudit(ev AllocationCompletedEvent) string {
	ids := "-"
	if ev.Allocated > 0 {
		ids = fmt.Sprintf("%d..%d", ev.FirstAllocationID, ev.LastAllocationID)
	}
	return fmt.Sprintf("[%s] Auto-allocation completed | event_id=%s | exam_id=%d | operator_id=%d | allocated=%d | allocation_ids=%s | unplaced_students=%d | remaining_seats=%d\n",
		ev.CompletedAt, ev.EventID, ev.ExamID, ev.OperatorID, ev.Allocated, ids, ev.UnplacedStudents, ev.RemainingSeats)
}
