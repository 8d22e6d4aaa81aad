package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

// PriceRepo stores the unit price of each seat section.  A section has at
// most one price row.
type PriceRepo struct {
	db *sql.DB
}

// NewPriceRepo returns a new PriceRepo bound to the given database.
func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// Create inserts a price and sets p.ID.  A second price for the same
// section yields ErrDuplicate.
func (r *PriceRepo) Create(ctx context.Context, p *model.Price) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error { return r.CreateTx(ctx, tx, p) })
}

// CreateTx is Create within an existing transaction.
func (r *PriceRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Price) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO prices (event_id, seat_section_id, price_cents) VALUES (?, ?, ?)`,
		p.EventID, p.SeatSectionID, p.PriceCents)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns a price or ErrPriceNotFound.
func (r *PriceRepo) GetByID(ctx context.Context, id uint64) (*model.Price, error) {
	var p model.Price
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, seat_section_id, price_cents FROM prices WHERE id = ?`, id).
		Scan(&p.ID, &p.EventID, &p.SeatSectionID, &p.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateCents changes the amount of an existing price and returns the
// updated row.
func (r *PriceRepo) UpdateCents(ctx context.Context, id uint64, cents int64) (*model.Price, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE prices SET price_cents = ? WHERE id = ?`, cents, id); err != nil {
		return nil, err
	}
	// RowsAffected is 0 on MySQL for an unchanged amount; re-read instead.
	return r.GetByID(ctx, id)
}

// ListByEvent returns all prices for an event ordered by section id.
func (r *PriceRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Price, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, seat_section_id, price_cents FROM prices WHERE event_id = ? ORDER BY seat_section_id`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Price{}
	for rows.Next() {
		var p model.Price
		if err := rows.Scan(&p.ID, &p.EventID, &p.SeatSectionID, &p.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
