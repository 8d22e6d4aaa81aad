package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/database/dbtest"
	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
)

type nopPublisher struct{}

func (nopPublisher) PublishTicket(context.Context, queue.TicketEvent) error          { return nil }
func (nopPublisher) PublishRepair(context.Context, queue.InventoryRepairTask) error { return nil }

type ledger struct {
	db       *sql.DB
	sections *repository.SectionRepo
	tickets  *repository.TicketRepo
	reserve  *ReservationService
	cancel   *CancellationService
	log      *slog.Logger
	buf      *syncBuffer
	event    *model.Event
	section  model.SeatSection
	who      model.Identity
}

// newLedger wires the real repositories against SQLite with one event
// holding a single section of totalSeats seats.
func newLedger(t *testing.T, totalSeats int) *ledger {
	t.Helper()
	db := dbtest.New(t)
	ctx := context.Background()

	e := &model.Event{Date: time.Date(2026, 11, 7, 19, 30, 0, 0, time.UTC), Opponent: "Rivals FC", HomeAway: model.Home}
	secs, err := repository.NewEventRepo(db).Create(ctx, e, []repository.SectionSeed{
		{Label: "A1", TotalSeats: totalSeats, PriceCents: 45000},
	})
	require.NoError(t, err)
	require.Len(t, secs, 1)

	u := &model.User{Email: "fan@example.com", FirstName: "Fan", LastName: "One"}
	require.NoError(t, repository.NewUserRepo(db).Create(ctx, u, "password123", 4))

	log, buf := newCapturingLogger()
	sections := repository.NewSectionRepo(db)
	tickets := repository.NewTicketRepo(db)
	comp := NewCompensator(sections, nopPublisher{}, testLedger, log)
	return &ledger{
		db:       db,
		sections: sections,
		tickets:  tickets,
		reserve:  NewReservationService(sections, tickets, nopPublisher{}, comp, log),
		cancel:   NewCancellationService(tickets, nopPublisher{}, comp, log),
		log:      log,
		buf:      buf,
		event:    e,
		section:  secs[0],
		who:      model.Identity{UserID: u.ID, Role: model.RoleUser},
	}
}

func (l *ledger) book(qty int) (*model.Ticket, error) {
	return l.reserve.Reserve(context.Background(),
		ReserveRequest{EventID: l.event.ID, SeatSectionID: l.section.ID, Quantity: qty}, l.who)
}

func (l *ledger) available(t *testing.T) int {
	t.Helper()
	s, err := l.sections.GetByID(context.Background(), l.section.ID)
	require.NoError(t, err)
	return s.AvailableSeats
}

// assertInvariant checks available = total - sum(live tickets).
func (l *ledger) assertInvariant(t *testing.T) {
	t.Helper()
	sold, err := l.tickets.LiveQuantity(context.Background(), l.section.ID)
	require.NoError(t, err)
	avail := l.available(t)
	assert.Equal(t, l.section.TotalSeats-sold, avail)
	assert.GreaterOrEqual(t, avail, 0)
	assert.LessOrEqual(t, avail, l.section.TotalSeats)
}

func TestLedger_ReserveDecrements(t *testing.T) {
	l := newLedger(t, 1000)

	tk, err := l.book(3)
	require.NoError(t, err)
	assert.NotZero(t, tk.ID)
	assert.Equal(t, 997, l.available(t))
	l.assertInvariant(t)
}

func TestLedger_LastSeatsGoToOneCaller(t *testing.T) {
	l := newLedger(t, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.book(2)
		}(i)
	}
	wg.Wait()

	ok, capacity := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCapacityExceeded):
			capacity++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, capacity)
	assert.Equal(t, 0, l.available(t))
	l.assertInvariant(t)
}

func TestLedger_CancelRestoresSeats(t *testing.T) {
	l := newLedger(t, 5)

	tk, err := l.book(5)
	require.NoError(t, err)
	assert.Equal(t, 0, l.available(t))

	require.NoError(t, l.cancel.Cancel(context.Background(), tk.ID, l.who))
	assert.Equal(t, 5, l.available(t))

	_, err = l.tickets.GetByID(context.Background(), tk.ID)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	l.assertInvariant(t)

	assert.ErrorIs(t, l.cancel.Cancel(context.Background(), tk.ID, l.who), ErrNotFound)
	assert.Equal(t, 5, l.available(t))
}

func TestLedger_OverReleaseIsClamped(t *testing.T) {
	l := newLedger(t, 10)
	_, err := l.book(1)
	require.NoError(t, err)

	comp := NewCompensator(l.sections, nopPublisher{}, testLedger, l.log)
	out, err := comp.Release(context.Background(), l.event.ID, l.section.ID, 2, "test")
	require.NoError(t, err)
	assert.True(t, out.Result.Clamped)
	assert.Equal(t, 10, l.available(t))
	assert.Contains(t, l.buf.String(), "ConsistencyViolation")
}

func TestLedger_NoOversellUnderLoad(t *testing.T) {
	const seats, callers = 7, 20
	l := newLedger(t, seats)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.book(1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, ErrCapacityExceeded) {
				full++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, seats, ok)
	assert.Equal(t, callers-seats, full)
	assert.Equal(t, 0, l.available(t))
	l.assertInvariant(t)
}

func TestLedger_CapacityErrorHasNoSideEffects(t *testing.T) {
	l := newLedger(t, 4)
	_, err := l.book(3)
	require.NoError(t, err)

	before, err := l.tickets.List(context.Background(), 0)
	require.NoError(t, err)

	_, err = l.book(2)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	after, err := l.tickets.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, l.available(t))
}

func TestLedger_RoundTripMixed(t *testing.T) {
	l := newLedger(t, 50)
	ctx := context.Background()

	var booked []*model.Ticket
	for _, q := range []int{4, 1, 9, 2} {
		tk, err := l.book(q)
		require.NoError(t, err)
		booked = append(booked, tk)
	}
	assert.Equal(t, 34, l.available(t))

	require.NoError(t, l.cancel.Cancel(ctx, booked[2].ID, l.who))
	require.NoError(t, l.cancel.Cancel(ctx, booked[0].ID, l.who))
	assert.Equal(t, 47, l.available(t))
	l.assertInvariant(t)
}
