package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

// TicketRepo persists tickets.  It never touches seat counters: the
// services pair every insert and delete with a ledger call.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, event_id, seat_section_id, user_id, quantity, created_at`

func scanTicket(row interface{ Scan(...any) error }, t *model.Ticket) error {
	return row.Scan(&t.ID, &t.EventID, &t.SeatSectionID, &t.UserID, &t.Quantity, &t.CreatedAt)
}

// Create inserts a ticket and fills in its ID and CreatedAt.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	if t.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (event_id, seat_section_id, user_id, quantity, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.EventID, t.SeatSectionID, t.UserID, t.Quantity, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt = now
	return nil
}

// GetByID returns a ticket or ErrTicketNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a ticket.  The affected row count decides the winner
// when two cancellations race: only the caller that actually deleted the
// row gets nil, every other caller gets ErrTicketNotFound.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// List returns tickets newest first.  A zero userID lists every user's
// tickets.
func (r *TicketRepo) List(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any
	if userID != 0 {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Details returns the joined ticket view (event date and opponent,
// section label, unit price) for one user, ordered by event date.
func (r *TicketRepo) Details(ctx context.Context, userID uint64) ([]model.TicketDetail, error) {
	const q = `SELECT t.id, t.event_id, e.event_date, e.opponent, e.home_away,
	                  t.seat_section_id, s.section, t.quantity, COALESCE(p.price_cents, 0)
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           JOIN seat_sections s ON s.id = t.seat_section_id
	           LEFT JOIN prices p ON p.seat_section_id = t.seat_section_id
	           WHERE t.user_id = ?
	           ORDER BY e.event_date, t.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TicketDetail{}
	for rows.Next() {
		var d model.TicketDetail
		if err := rows.Scan(&d.TicketID, &d.EventID, &d.Date, &d.Opponent, &d.HomeAway,
			&d.SeatSectionID, &d.Section, &d.Quantity, &d.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LiveQuantity sums the quantity of all live tickets in a section.
func (r *TicketRepo) LiveQuantity(ctx context.Context, sectionID uint64) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM tickets WHERE seat_section_id = ?`, sectionID).Scan(&sum)
	return sum, err
}
