package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

func TestEventCreate_WithSectionsAndPrices(t *testing.T) {
	db := newDB(t)
	e, secs := seedEvent(t, db,
		SectionSeed{Label: "A1", TotalSeats: 1000, PriceCents: 45000},
		SectionSeed{Label: "B1", TotalSeats: 800, PriceCents: 30000},
	)
	require.NotZero(t, e.ID)
	require.Len(t, secs, 2)
	assert.Equal(t, 1000, secs[0].AvailableSeats)

	prices, err := NewPriceRepo(db).ListByEvent(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, int64(45000), prices[0].PriceCents)
	assert.Equal(t, secs[1].ID, prices[1].SeatSectionID)
}

func TestEventCreate_RollsBackOnDuplicateSection(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	repo := NewEventRepo(db)

	e := &model.Event{Date: time.Now(), Opponent: "Dup", HomeAway: model.Away}
	_, err := repo.Create(ctx, e, []SectionSeed{{Label: "A1", TotalSeats: 1}, {Label: "A1", TotalSeats: 1}})
	assert.ErrorIs(t, err, ErrDuplicate)

	events, err := repo.List(ctx, model.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventList_FiltersAndOrders(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	repo := NewEventRepo(db)
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	for i, ev := range []model.Event{
		{Date: base.Add(48 * time.Hour), Opponent: "Northside United", HomeAway: model.Home},
		{Date: base, Opponent: "Southport", HomeAway: model.Home},
		{Date: base.Add(24 * time.Hour), Opponent: "North Rovers", HomeAway: model.Away},
	} {
		ev := ev
		_, err := repo.Create(ctx, &ev, nil)
		require.NoError(t, err, i)
	}

	all, err := repo.List(ctx, model.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Southport", all[0].Opponent)
	assert.Equal(t, "Northside United", all[2].Opponent)

	home, err := repo.List(ctx, model.EventFilter{HomeOnly: true})
	require.NoError(t, err)
	assert.Len(t, home, 2)

	north, err := repo.List(ctx, model.EventFilter{Query: "NORTH"})
	require.NoError(t, err)
	assert.Len(t, north, 2)

	homeNorth, err := repo.List(ctx, model.EventFilter{HomeOnly: true, Query: "north"})
	require.NoError(t, err)
	require.Len(t, homeNorth, 1)
	assert.Equal(t, "Northside United", homeNorth[0].Opponent)
}

func TestEventUpdateAndGet(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	repo := NewEventRepo(db)
	e, _ := seedEvent(t, db)

	e.Opponent = "Changed"
	e.HomeAway = model.Away
	require.NoError(t, repo.Update(ctx, e))

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Opponent)
	assert.Equal(t, model.Away, got.HomeAway)
	assert.True(t, got.Date.Equal(e.Date))

	missing := &model.Event{ID: 999, Date: time.Now(), Opponent: "x", HomeAway: model.Home}
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrEventNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventDelete_Cascades(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	e, secs := seedEvent(t, db, SectionSeed{Label: "A1", TotalSeats: 10, PriceCents: 100})
	u := seedUser(t, db, "fan@example.com")
	require.NoError(t, NewTicketRepo(db).Create(ctx, &model.Ticket{
		EventID: e.ID, SeatSectionID: secs[0].ID, UserID: u.ID, Quantity: 2,
	}))

	require.NoError(t, NewEventRepo(db).Delete(ctx, e.ID))

	for _, table := range []string{"events", "seat_sections", "prices", "tickets"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
	assert.ErrorIs(t, NewEventRepo(db).Delete(ctx, e.ID), ErrEventNotFound)
}
