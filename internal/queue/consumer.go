package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/iliyamo/stadium-tickets/internal/logger"
)

// Handler processes one message body.  Returning nil acks the delivery.
// Errors wrapped with Permanent are rejected without requeue; any other
// error requeues the delivery after the consumer's retry delay.
type Handler func(ctx context.Context, body []byte) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (bad payload, vanished record).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Consumer reads one queue with manual acks and reconnects with
// exponential backoff whenever the broker connection drops.
type Consumer struct {
	URL        string
	Exchange   string
	Queue      string
	Handler    Handler
	Log        *slog.Logger
	RetryDelay time.Duration // pause before requeueing a failed delivery
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	log := c.Log.With(slog.String("queue", c.Queue))
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("consumer: failed to dial broker", logger.Err(err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Warn("consumer: consume loop ended, reconnecting", logger.Err(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("consumer: set QoS failed", logger.Err(err))
	}
	if err := DeclareTopology(ch, c.Exchange); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		c.dispatch(ctx, d, log)
	}
	return errors.New("deliveries channel closed")
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery, log *slog.Logger) {
	carrier := propagation.MapCarrier{}
	for k, v := range d.Headers {
		if s, ok := v.(string); ok {
			carrier[k] = s
		}
	}
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)
	c.settle(msgCtx, d, d.Body, log)
}

// settle runs the handler and acks, rejects or requeues the delivery.
func (c *Consumer) settle(ctx context.Context, ack Acknowledger, body []byte, log *slog.Logger) {
	err := c.Handler(ctx, body)
	switch {
	case err == nil:
		_ = ack.Ack(false)
	case IsPermanent(err):
		log.Error("consumer: dropping message", logger.Err(err))
		_ = ack.Nack(false, false)
	default:
		log.Warn("consumer: handler failed, requeueing", logger.Err(err), slog.Duration("delay", c.RetryDelay))
		sleep(ctx, c.RetryDelay)
		_ = ack.Nack(false, true)
	}
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
