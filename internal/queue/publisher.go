package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/iliyamo/stadium-tickets/internal/logger"
)

// Publisher sends JSON messages to the topic exchange.  The connection is
// opened on first use and re-opened after a failure, so the HTTP server
// can start (and keep serving) while the broker is down; publishing then
// returns an error and callers decide whether that matters.
type Publisher struct {
	url      string
	exchange string
	log      *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for url; it does not dial.
func NewPublisher(url, exchange string, log *slog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{url: url, exchange: exchange, log: log}
}

// PublishTicket publishes a ticket lifecycle event under ev.Type.
func (p *Publisher) PublishTicket(ctx context.Context, ev TicketEvent) error {
	if ev.Type != KeyTicketReserved && ev.Type != KeyTicketCancelled {
		return fmt.Errorf("publish ticket event: unknown type %q", ev.Type)
	}
	return p.PublishJSON(ctx, ev.Type, ev)
}

// PublishRepair queues an inventory repair.  It only returns nil once the
// broker has confirmed the message, so a nil error means the task is
// durably stored.
func (p *Publisher) PublishRepair(ctx context.Context, task InventoryRepairTask) error {
	if task.TaskID == "" {
		return errors.New("publish repair: empty task id")
	}
	return p.PublishJSON(ctx, KeyInventoryRepair, task)
}

// PublishJSON marshals v and publishes it as a persistent message, waiting
// for the publisher confirm.
func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	const op = "queue.Publisher.PublishJSON"

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	headers := amqp.Table{}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, val := range carrier {
		headers[k] = val
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("%s: publish %s: %w", op, key, err)
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		p.reset()
		return fmt.Errorf("%s: confirm %s: %w", op, key, err)
	}
	if !acked {
		return fmt.Errorf("%s: broker nacked %s", op, key)
	}
	return nil
}

// channel returns the open channel, dialing and declaring the topology
// when needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("confirm mode: %w", err)
	}
	if err := DeclareTopology(ch, p.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	if p.log != nil {
		p.log.Debug("rabbitmq publisher connected", slog.String("exchange", p.exchange))
	}
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && p.log != nil && !errors.Is(err, amqp.ErrClosed) {
			p.log.Debug("rabbitmq publisher close", logger.Err(err))
		}
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// DeclareTopology idempotently declares the exchange, both durable queues
// and their bindings.
func DeclareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	bindings := map[string]string{
		AuditQueue:  "ticket.*",
		RepairQueue: KeyInventoryRepair,
	}
	for queue, key := range bindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", queue, err)
		}
	}
	return nil
}
