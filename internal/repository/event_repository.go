package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

// SectionSeed is one seat section (and its price) created together with
// a new event.
type SectionSeed struct {
	Label      string
	TotalSeats int
	PriceCents int64
}

// EventRepo provides CRUD operations for events.  Creating an event also
// creates its default sections and prices, and deleting one removes
// everything that references it; both run in a single transaction.
type EventRepo struct {
	db       *sql.DB
	sections *SectionRepo
	prices   *PriceRepo
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db, sections: NewSectionRepo(db), prices: NewPriceRepo(db)}
}

const eventColumns = `id, event_date, opponent, home_away, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }, e *model.Event) error {
	return row.Scan(&e.ID, &e.Date, &e.Opponent, &e.HomeAway, &e.CreatedAt, &e.UpdatedAt)
}

// Create inserts the event and one section plus one price row per seed.
// On success e.ID and the timestamps are populated and the created
// sections are returned in seed order.
func (r *EventRepo) Create(ctx context.Context, e *model.Event, seeds []SectionSeed) ([]model.SeatSection, error) {
	now := time.Now().UTC()
	e.Date = e.Date.UTC()
	var sections []model.SeatSection

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO events (event_date, opponent, home_away, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			e.Date, e.Opponent, e.HomeAway, now, now)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = uint64(id)

		sections = make([]model.SeatSection, 0, len(seeds))
		for _, seed := range seeds {
			s := model.SeatSection{EventID: e.ID, Section: seed.Label, TotalSeats: seed.TotalSeats}
			if err := r.sections.CreateTx(ctx, tx, &s); err != nil {
				return err
			}
			p := model.Price{EventID: e.ID, SeatSectionID: s.ID, PriceCents: seed.PriceCents}
			if err := r.prices.CreateTx(ctx, tx, &p); err != nil {
				return err
			}
			sections = append(sections, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.CreatedAt, e.UpdatedAt = now, now
	return sections, nil
}

// GetByID returns an event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns events ordered by date, optionally restricted to home
// fixtures and to opponents containing f.Query (case-insensitive).
func (r *EventRepo) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.HomeOnly {
		where = append(where, "home_away = ?")
		args = append(args, model.Home)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "LOWER(opponent) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update overwrites date, opponent and home/away of an existing event.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	e.Date = e.Date.UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET event_date = ?, opponent = ?, home_away = ?, updated_at = ? WHERE id = ?`,
		e.Date, e.Opponent, e.HomeAway, now, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	e.UpdatedAt = now
	return nil
}

// Delete removes an event together with its tickets, prices and seat
// sections.  Children are deleted explicitly so the cascade does not
// depend on foreign key enforcement being enabled.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM tickets WHERE event_id = ?`,
			`DELETE FROM prices WHERE event_id = ?`,
			`DELETE FROM seat_sections WHERE event_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}
