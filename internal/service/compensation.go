package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/logger"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports"
)

// ReleaseOutcome reports how seats were credited back.
type ReleaseOutcome struct {
	Result repository.ReleaseResult
	Queued bool   // handed to the repair consumer instead of applied inline
	TaskID string // repair task id when Queued
}

// Compensator credits seats back to a section when a ticket goes away:
// either a ticket that could not be stored after its seats were taken, or
// a cancelled ticket.  The release is retried with exponential backoff,
// then queued as a durable repair task.  Retries stop early once the next
// backoff would push the total wait past maxWait.  Only when queueing fails too
// does it give up, and then it logs a ConsistencyViolation and returns
// ErrConsistencyViolation.
type Compensator struct {
	sections ports.SectionRepo
	pub      ports.Publisher
	log      *slog.Logger
	attempts int
	backoff  time.Duration
	maxWait  time.Duration
}

const defaultMaxWait = 2 * time.Second

func NewCompensator(sections ports.SectionRepo, pub ports.Publisher, cfg config.LedgerConfig, log *slog.Logger) *Compensator {
	attempts := cfg.CompensationAttempts
	if attempts < 1 {
		attempts = 1
	}
	maxWait := cfg.CompensationMaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return &Compensator{
		sections: sections, pub: pub, log: log,
		attempts: attempts, backoff: cfg.CompensationBackoff, maxWait: maxWait,
	}
}

// Release credits qty seats of sectionID back.  It runs detached from the
// caller's cancellation so a client disconnect cannot leave seats leaked.
func (c *Compensator) Release(ctx context.Context, eventID, sectionID uint64, qty int, reason string) (ReleaseOutcome, error) {
	const op = "service.Compensator.Release"

	ctx = context.WithoutCancel(ctx)
	ctx, span := tracer.Start(ctx, "inventory.release")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("event_id", int64(eventID)),
		attribute.Int64("seat_section_id", int64(sectionID)),
		attribute.Int("delta", qty),
		attribute.String("reason", reason),
	)

	log := c.log.With(
		slog.String("op", op),
		slog.Uint64("event_id", eventID),
		slog.Uint64("seat_section_id", sectionID),
		slog.Int("delta", qty),
	)

	var (
		lastErr error
		waited  time.Duration
	)
	delay := c.backoff
	for attempt := 1; attempt <= c.attempts; attempt++ {
		res, err := c.sections.Release(ctx, sectionID, qty)
		if err == nil {
			if res.Clamped {
				log.Error("ConsistencyViolation",
					slog.String("reason", "release exceeded total_seats, clamped"),
					slog.Int("excess", res.Excess),
				)
				span.AddEvent("clamped", nil)
			}
			return ReleaseOutcome{Result: res}, nil
		}
		if errors.Is(err, repository.ErrSectionNotFound) {
			// the section was deleted with its event; there is nothing left to credit
			log.Warn("release skipped, section no longer exists")
			return ReleaseOutcome{Result: repository.ReleaseResult{Available: -1}}, nil
		}
		lastErr = err
		log.Warn("release attempt failed", slog.Int("attempt", attempt), logger.Err(err))
		if attempt == c.attempts {
			break
		}
		if waited+delay > c.maxWait {
			log.Warn("release retry budget spent", slog.Int("attempt", attempt), slog.Duration("waited", waited))
			break
		}
		if delay > 0 {
			time.Sleep(delay)
			waited += delay
			delay *= 2
		}
	}

	task := queue.InventoryRepairTask{
		TaskID:        uuid.NewString(),
		EventID:       eventID,
		SeatSectionID: sectionID,
		Quantity:      qty,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.pub.PublishRepair(ctx, task); err != nil {
		log.Error("ConsistencyViolation",
			slog.String("reason", reason+": release failed and repair could not be queued"),
			slog.String("release_error", lastErr.Error()),
			logger.Err(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "consistency violation")
		return ReleaseOutcome{}, fmt.Errorf("%w: event %d section %d delta %d: %v",
			ErrConsistencyViolation, eventID, sectionID, qty, errors.Join(lastErr, err))
	}

	log.Warn("release queued for repair", slog.String("task_id", task.TaskID), logger.Err(lastErr))
	span.SetAttributes(attribute.String("repair_task_id", task.TaskID))
	return ReleaseOutcome{Result: repository.ReleaseResult{Available: -1}, Queued: true, TaskID: task.TaskID}, nil
}
