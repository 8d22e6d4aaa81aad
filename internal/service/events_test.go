package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service/ports/mocks"
)

var defaultSections = config.SectionDefaults{
	ACount: 20, ASeats: 1000, APriceCents: 45000,
	BCount: 24, BSeats: 800, BPriceCents: 30000,
}

func TestEventService_CreateSeedsDefaults(t *testing.T) {
	events := mocks.NewMockEventRepo(t)
	svc := NewEventService(events, defaultSections, newTestLogger(t))

	events.On("Create", mock.Anything, mock.AnythingOfType("*model.Event"), mock.MatchedBy(func(seeds []repository.SectionSeed) bool {
		return len(seeds) == 44 &&
			seeds[0] == repository.SectionSeed{Label: "A1", TotalSeats: 1000, PriceCents: 45000} &&
			seeds[43] == repository.SectionSeed{Label: "B24", TotalSeats: 800, PriceCents: 30000}
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Event).ID = 8
	}).Return([]model.SeatSection{{ID: 1}}, nil)

	e, secs, err := svc.Create(context.Background(), EventInput{
		Date: time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC), Opponent: " Rivals ", HomeAway: model.Home,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), e.ID)
	assert.Equal(t, "Rivals", e.Opponent)
	assert.Len(t, secs, 1)
}

func TestEventService_Validation(t *testing.T) {
	svc := NewEventService(mocks.NewMockEventRepo(t), defaultSections, newTestLogger(t))
	now := time.Now()

	for name, in := range map[string]EventInput{
		"no date":     {Opponent: "x", HomeAway: model.Home},
		"no opponent": {Date: now, Opponent: "  ", HomeAway: model.Home},
		"bad side":    {Date: now, Opponent: "x", HomeAway: "Neutral"},
	} {
		_, _, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestEventService_NotFoundMapping(t *testing.T) {
	events := mocks.NewMockEventRepo(t)
	svc := NewEventService(events, defaultSections, newTestLogger(t))
	ctx := context.Background()

	events.On("GetByID", mock.Anything, uint64(4)).Return(nil, repository.ErrEventNotFound)
	events.On("Update", mock.Anything, mock.Anything).Return(repository.ErrEventNotFound)
	events.On("Delete", mock.Anything, uint64(4)).Return(repository.ErrEventNotFound)

	_, err := svc.Get(ctx, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, 4, EventInput{Date: time.Now(), Opponent: "x", HomeAway: model.Away})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 4), ErrNotFound)
}

func TestAuditor_ReportsDrift(t *testing.T) {
	sections := mocks.NewMockSectionRepo(t)
	tickets := mocks.NewMockTicketRepo(t)
	log, buf := newCapturingLogger()
	a := NewAuditor(sections, tickets, log)

	sections.On("GetByID", mock.Anything, uint64(10)).
		Return(&model.SeatSection{ID: 10, EventID: 1, TotalSeats: 100, AvailableSeats: 90}, nil)
	tickets.On("LiveQuantity", mock.Anything, uint64(10)).Return(7, nil)

	got, err := a.AuditSection(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 93, got.Expected)
	assert.Equal(t, -3, got.Drift)
	assert.Contains(t, buf.String(), "ConsistencyViolation")
}
