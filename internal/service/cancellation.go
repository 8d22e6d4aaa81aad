package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iliyamo/stadium-tickets/internal/logger"
	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports"
)

// CancellationService reverses a reservation exactly once: the ticket row
// is deleted first, and only the caller whose delete removed it credits
// the seats back.
type CancellationService struct {
	tickets    ports.TicketRepo
	pub        ports.Publisher
	compensate *Compensator
	log        *slog.Logger
}

func NewCancellationService(tickets ports.TicketRepo, pub ports.Publisher, compensate *Compensator, log *slog.Logger) *CancellationService {
	return &CancellationService{tickets: tickets, pub: pub, compensate: compensate, log: log}
}

// Cancel deletes ticketID on behalf of who.  Only the owner or an admin
// may cancel.
func (s *CancellationService) Cancel(ctx context.Context, ticketID uint64, who model.Identity) (err error) {
	const op = "service.CancellationService.Cancel"

	ctx, span := tracer.Start(ctx, "tickets.cancel")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int64("ticket_id", int64(ticketID)))

	t, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
	}
	if err != nil {
		return fmt.Errorf("%s: get ticket: %w", op, err)
	}
	if !who.Owns(t.UserID) && !who.IsAdmin() {
		return fmt.Errorf("%w: ticket %d", ErrUnauthorized, ticketID)
	}

	if err := s.tickets.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			// a concurrent cancel won; it owns the release
			return fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
		}
		return fmt.Errorf("%s: delete ticket: %w", op, err)
	}

	out, err := s.compensate.Release(ctx, t.EventID, t.SeatSectionID, t.Quantity, "ticket cancelled")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ticket cancelled",
		slog.String("op", op),
		slog.Uint64("ticket_id", t.ID),
		slog.Uint64("user_id", t.UserID),
		slog.Uint64("cancelled_by", who.UserID),
		slog.Uint64("seat_section_id", t.SeatSectionID),
		slog.Int("quantity", t.Quantity),
		slog.Bool("release_queued", out.Queued),
	)

	ev := queue.TicketEvent{
		Type:          queue.KeyTicketCancelled,
		TicketID:      t.ID,
		EventID:       t.EventID,
		SeatSectionID: t.SeatSectionID,
		UserID:        t.UserID,
		Quantity:      t.Quantity,
		Available:     out.Result.Available,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.pub.PublishTicket(ctx, ev); err != nil {
		s.log.Warn("publish ticket.cancelled failed", slog.String("op", op), logger.Err(err))
	}
	return nil
}
