package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/database/dbtest"
	"github.com/iliyamo/stadium-tickets/internal/model"
)

// seedEvent creates an event with one section per seed and returns the
// event and its sections.
func seedEvent(t *testing.T, db *sql.DB, seeds ...SectionSeed) (*model.Event, []model.SeatSection) {
	t.Helper()
	e := &model.Event{
		Date:     time.Date(2026, 11, 7, 19, 30, 0, 0, time.UTC),
		Opponent: "Rivals FC",
		HomeAway: model.Home,
	}
	sections, err := NewEventRepo(db).Create(context.Background(), e, seeds)
	require.NoError(t, err)
	return e, sections
}

func seedUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, FirstName: "Test", LastName: "User"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u, "password123", 4))
	return u
}

func newDB(t *testing.T) *sql.DB { return dbtest.New(t) }
