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

// ReserveRequest asks for Quantity seats in a section of an event.
type ReserveRequest struct {
	EventID       uint64
	SeatSectionID uint64
	Quantity      int
}

// ReservationService turns a booking request into a ticket plus a matching
// inventory debit.  Either both exist afterwards or neither does: if the
// ticket cannot be stored the seats are credited back by the compensator.
type ReservationService struct {
	sections   ports.SectionRepo
	tickets    ports.TicketRepo
	pub        ports.Publisher
	compensate *Compensator
	log        *slog.Logger
}

func NewReservationService(
	sections ports.SectionRepo,
	tickets ports.TicketRepo,
	pub ports.Publisher,
	compensate *Compensator,
	log *slog.Logger,
) *ReservationService {
	return &ReservationService{sections: sections, tickets: tickets, pub: pub, compensate: compensate, log: log}
}

// Reserve books req.Quantity seats for the caller.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest, who model.Identity) (ticket *model.Ticket, err error) {
	const op = "service.ReservationService.Reserve"

	ctx, span := tracer.Start(ctx, "tickets.reserve")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.Int64("event_id", int64(req.EventID)),
		attribute.Int64("seat_section_id", int64(req.SeatSectionID)),
		attribute.Int("quantity", req.Quantity),
	)

	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if who.UserID == 0 {
		return nil, ErrUnauthorized
	}

	section, err := s.sections.GetByID(ctx, req.SeatSectionID)
	if errors.Is(err, repository.ErrSectionNotFound) {
		return nil, fmt.Errorf("%w: seat section %d", ErrNotFound, req.SeatSectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: get section: %w", op, err)
	}
	if section.EventID != req.EventID {
		return nil, fmt.Errorf("%w: seat section %d in event %d", ErrNotFound, req.SeatSectionID, req.EventID)
	}

	available, err := s.sections.TryReserve(ctx, section.ID, req.Quantity)
	switch {
	case errors.Is(err, repository.ErrInsufficientCapacity):
		return nil, fmt.Errorf("%w: requested %d", ErrCapacityExceeded, req.Quantity)
	case errors.Is(err, repository.ErrSectionNotFound):
		return nil, fmt.Errorf("%w: seat section %d", ErrNotFound, req.SeatSectionID)
	case err != nil:
		return nil, fmt.Errorf("%s: reserve seats: %w", op, err)
	}

	t := &model.Ticket{
		EventID:       section.EventID,
		SeatSectionID: section.ID,
		UserID:        who.UserID,
		Quantity:      req.Quantity,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		s.log.Error("ticket insert failed after seats were taken, compensating",
			slog.String("op", op),
			slog.Uint64("seat_section_id", section.ID),
			slog.Int("delta", req.Quantity),
			logger.Err(err),
		)
		if _, cerr := s.compensate.Release(ctx, section.EventID, section.ID, req.Quantity, "ticket insert failed"); cerr != nil {
			return nil, fmt.Errorf("%s: persist ticket: %v: %w", op, err, cerr)
		}
		return nil, fmt.Errorf("%s: persist ticket: %w", op, err)
	}

	s.log.Info("ticket reserved",
		slog.String("op", op),
		slog.Uint64("ticket_id", t.ID),
		slog.Uint64("user_id", t.UserID),
		slog.Uint64("seat_section_id", t.SeatSectionID),
		slog.Int("quantity", t.Quantity),
		slog.Int("available_seats", available),
	)
	span.SetAttributes(attribute.Int64("ticket_id", int64(t.ID)))

	ev := queue.TicketEvent{
		Type:          queue.KeyTicketReserved,
		TicketID:      t.ID,
		EventID:       t.EventID,
		SeatSectionID: t.SeatSectionID,
		UserID:        t.UserID,
		Quantity:      t.Quantity,
		Available:     available,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.pub.PublishTicket(ctx, ev); err != nil {
		s.log.Warn("publish ticket.reserved failed", slog.String("op", op), logger.Err(err))
	}
	return t, nil
}
