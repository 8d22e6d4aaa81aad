package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports"
)

// EventInput is the editable part of an event.
type EventInput struct {
	Date     time.Time
	Opponent string
	HomeAway string
}

func (in EventInput) validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Opponent) == "" {
		return fmt.Errorf("%w: opponent is required", ErrInvalidInput)
	}
	if in.HomeAway != model.Home && in.HomeAway != model.Away {
		return fmt.Errorf("%w: home_away must be %s or %s", ErrInvalidInput, model.Home, model.Away)
	}
	return nil
}

// EventService manages fixtures.  A new event gets the default seat
// sections and prices in the same transaction.
type EventService struct {
	events   ports.EventRepo
	defaults config.SectionDefaults
	log      *slog.Logger
}

func NewEventService(events ports.EventRepo, defaults config.SectionDefaults, log *slog.Logger) *EventService {
	return &EventService{events: events, defaults: defaults, log: log}
}

// Create stores a new event with its default sections.
func (s *EventService) Create(ctx context.Context, in EventInput) (*model.Event, []model.SeatSection, error) {
	const op = "service.EventService.Create"

	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	templates := s.defaults.Templates()
	seeds := make([]repository.SectionSeed, 0, len(templates))
	for _, t := range templates {
		seeds = append(seeds, repository.SectionSeed{Label: t.Label, TotalSeats: t.TotalSeats, PriceCents: t.PriceCents})
	}

	e := &model.Event{Date: in.Date, Opponent: strings.TrimSpace(in.Opponent), HomeAway: in.HomeAway}
	sections, err := s.events.Create(ctx, e, seeds)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("event created",
		slog.String("op", op),
		slog.Uint64("event_id", e.ID),
		slog.String("opponent", e.Opponent),
		slog.Int("sections", len(sections)),
	)
	return e, sections, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return nil, fmt.Errorf("%w: event %d", ErrNotFound, id)
	}
	return e, err
}

// List returns events ordered by date.
func (s *EventService) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	return s.events.List(ctx, f)
}

// Update replaces the editable fields of an event.
func (s *EventService) Update(ctx context.Context, id uint64, in EventInput) (*model.Event, error) {
	const op = "service.EventService.Update"

	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &model.Event{ID: id, Date: in.Date, Opponent: strings.TrimSpace(in.Opponent), HomeAway: in.HomeAway}
	if err := s.events.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: event %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.events.GetByID(ctx, id)
}

// Delete removes an event and everything attached to it.
func (s *EventService) Delete(ctx context.Context, id uint64) error {
	const op = "service.EventService.Delete"

	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return fmt.Errorf("%w: event %d", ErrNotFound, id)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("event deleted", slog.String("op", op), slog.Uint64("event_id", id))
	return nil
}
