package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports"
)

// SectionAudit compares a section's counter with its live tickets.
type SectionAudit struct {
	SeatSectionID  uint64 `json:"seat_section_id"`
	EventID        uint64 `json:"event_id"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	TicketedSeats  int    `json:"ticketed_seats"`
	Expected       int    `json:"expected_available"`
	Drift          int    `json:"drift"` // available - expected; negative means seats are leaked
}

// Auditor reports counter drift so it can be reconciled by hand.  The two
// reads are not atomic, so a reservation in flight can show up as a
// transient drift.
type Auditor struct {
	sections ports.SectionRepo
	tickets  ports.TicketRepo
	log      *slog.Logger
}

func NewAuditor(sections ports.SectionRepo, tickets ports.TicketRepo, log *slog.Logger) *Auditor {
	return &Auditor{sections: sections, tickets: tickets, log: log}
}

// AuditSection computes the audit for one section and logs a
// ConsistencyViolation when the counter is off.
func (a *Auditor) AuditSection(ctx context.Context, sectionID uint64) (SectionAudit, error) {
	const op = "service.Auditor.AuditSection"

	s, err := a.sections.GetByID(ctx, sectionID)
	if errors.Is(err, repository.ErrSectionNotFound) {
		return SectionAudit{}, fmt.Errorf("%w: seat section %d", ErrNotFound, sectionID)
	}
	if err != nil {
		return SectionAudit{}, fmt.Errorf("%s: %w", op, err)
	}
	sold, err := a.tickets.LiveQuantity(ctx, sectionID)
	if err != nil {
		return SectionAudit{}, fmt.Errorf("%s: %w", op, err)
	}

	out := SectionAudit{
		SeatSectionID:  s.ID,
		EventID:        s.EventID,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		TicketedSeats:  sold,
		Expected:       s.TotalSeats - sold,
	}
	out.Drift = out.AvailableSeats - out.Expected
	if out.Drift != 0 {
		a.log.Error("ConsistencyViolation",
			slog.String("op", op),
			slog.String("reason", "available_seats does not match live tickets"),
			slog.Uint64("event_id", s.EventID),
			slog.Uint64("seat_section_id", s.ID),
			slog.Int("delta", out.Drift),
		)
	}
	return out, nil
}
