package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

// SectionRepo owns the seat_sections table and is the inventory ledger:
// after a section is created, available_seats changes only through
// TryReserve, Release and ReleaseOnce.  Each of them is one short
// transaction built around a conditional UPDATE, so the check and the
// write happen atomically in the database and hold across processes.
type SectionRepo struct {
	db *sql.DB
}

// NewSectionRepo returns a new SectionRepo bound to the given database.
func NewSectionRepo(db *sql.DB) *SectionRepo { return &SectionRepo{db: db} }

// ReleaseResult describes the outcome of crediting seats back to a section.
// Clamped is set when the credit would have pushed available_seats above
// total_seats; the counter was capped at total_seats and Excess holds the
// number of seats that were dropped.  A clamp always indicates a
// bookkeeping error elsewhere and must be reported by the caller.
type ReleaseResult struct {
	Available int
	Clamped   bool
	Excess    int
}

// maxReleaseRounds bounds the read/compare/write loop used when a release
// has to be clamped.  Each round only fails if another writer changed the
// row in between, so a handful of rounds is plenty.
const maxReleaseRounds = 5

// Create inserts a new section with all seats available and sets s.ID.
func (r *SectionRepo) Create(ctx context.Context, s *model.SeatSection) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error { return r.CreateTx(ctx, tx, s) })
}

// CreateTx is Create within an existing transaction.  AvailableSeats is
// always initialised to TotalSeats.
func (r *SectionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.SeatSection) error {
	if s.TotalSeats < 0 {
		return ErrInvalidQuantity
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO seat_sections (event_id, section, total_seats, available_seats) VALUES (?, ?, ?, ?)`,
		s.EventID, s.Section, s.TotalSeats, s.TotalSeats)
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
	s.ID = uint64(id)
	s.AvailableSeats = s.TotalSeats
	return nil
}

// GetByID returns a section or ErrSectionNotFound.
func (r *SectionRepo) GetByID(ctx context.Context, id uint64) (*model.SeatSection, error) {
	var s model.SeatSection
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, section, total_seats, available_seats FROM seat_sections WHERE id = ?`, id).
		Scan(&s.ID, &s.EventID, &s.Section, &s.TotalSeats, &s.AvailableSeats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByEvent returns the sections of an event sorted by row letter and
// then numeric suffix.  With availableOnly, sold out sections are skipped.
func (r *SectionRepo) ListByEvent(ctx context.Context, eventID uint64, availableOnly bool) ([]model.SeatSection, error) {
	q := `SELECT id, event_id, section, total_seats, available_seats FROM seat_sections WHERE event_id = ?`
	if availableOnly {
		q += ` AND available_seats > 0`
	}
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatSection{}
	for rows.Next() {
		var s model.SeatSection
		if err := rows.Scan(&s.ID, &s.EventID, &s.Section, &s.TotalSeats, &s.AvailableSeats); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return model.SectionLess(out[i].Section, out[j].Section) })
	return out, nil
}

// Rename changes the label of a section.  Seat counters are deliberately
// not updatable here.
func (r *SectionRepo) Rename(ctx context.Context, id uint64, label string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE seat_sections SET section = ? WHERE id = ?`, label, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 for an unchanged value too, so confirm the row exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// TryReserve atomically takes qty seats from a section and returns the
// number of seats left.  When fewer than qty seats are available it
// returns ErrInsufficientCapacity and changes nothing.
func (r *SectionRepo) TryReserve(ctx context.Context, sectionID uint64, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	var available int
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE seat_sections SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?`,
			qty, sectionID, qty)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM seat_sections WHERE id = ?`, sectionID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSectionNotFound
			}
			if err != nil {
				return err
			}
			return ErrInsufficientCapacity
		}
		return tx.QueryRowContext(ctx,
			`SELECT available_seats FROM seat_sections WHERE id = ?`, sectionID).Scan(&available)
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

// Release credits qty seats back to a section.  It never lets
// available_seats exceed total_seats; see ReleaseResult for how an
// overflow is reported.
func (r *SectionRepo) Release(ctx context.Context, sectionID uint64, qty int) (ReleaseResult, error) {
	if qty <= 0 {
		return ReleaseResult{}, ErrInvalidQuantity
	}
	var out ReleaseResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		out, err = releaseTx(ctx, tx, sectionID, qty)
		return err
	})
	if err != nil {
		return ReleaseResult{}, err
	}
	return out, nil
}

// ReleaseOnce applies a queued repair exactly once.  The task id is
// recorded in applied_repairs in the same transaction as the release, so
// a redelivered task returns ErrRepairApplied without touching the
// counter, and a failed release leaves no marker behind.
func (r *SectionRepo) ReleaseOnce(ctx context.Context, taskID string, sectionID uint64, qty int) (ReleaseResult, error) {
	if qty <= 0 {
		return ReleaseResult{}, ErrInvalidQuantity
	}
	if taskID == "" {
		return ReleaseResult{}, fmt.Errorf("release once: empty task id")
	}
	var out ReleaseResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO applied_repairs (task_id, seat_section_id, quantity, applied_at) VALUES (?, ?, ?, ?)`,
			taskID, sectionID, qty, time.Now().UTC())
		if err != nil {
			if isDuplicate(err) {
				return ErrRepairApplied
			}
			return err
		}
		out, err = releaseTx(ctx, tx, sectionID, qty)
		return err
	})
	if err != nil {
		return ReleaseResult{}, err
	}
	return out, nil
}

// releaseTx performs the bounded increment inside tx.  The common case is
// one conditional UPDATE.  If that matches nothing the row is either
// missing or would overflow; the overflow path reads the current value
// and caps it with a compare-and-set on that value, retrying when a
// concurrent writer got there first.
func releaseTx(ctx context.Context, tx *sql.Tx, sectionID uint64, qty int) (ReleaseResult, error) {
	for round := 0; round < maxReleaseRounds; round++ {
		res, err := tx.ExecContext(ctx,
			`UPDATE seat_sections SET available_seats = available_seats + ? WHERE id = ? AND available_seats + ? <= total_seats`,
			qty, sectionID, qty)
		if err != nil {
			return ReleaseResult{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ReleaseResult{}, err
		}

		var available, total int
		err = tx.QueryRowContext(ctx,
			`SELECT available_seats, total_seats FROM seat_sections WHERE id = ?`, sectionID).
			Scan(&available, &total)
		if errors.Is(err, sql.ErrNoRows) {
			return ReleaseResult{}, ErrSectionNotFound
		}
		if err != nil {
			return ReleaseResult{}, err
		}
		if n > 0 {
			return ReleaseResult{Available: available}, nil
		}
		if available+qty <= total {
			// a concurrent reservation made room; try the plain increment again
			continue
		}

		excess := available + qty - total
		if available == total {
			return ReleaseResult{Available: total, Clamped: true, Excess: excess}, nil
		}
		res, err = tx.ExecContext(ctx,
			`UPDATE seat_sections SET available_seats = total_seats WHERE id = ? AND available_seats = ?`,
			sectionID, available)
		if err != nil {
			return ReleaseResult{}, err
		}
		if n, err = res.RowsAffected(); err != nil {
			return ReleaseResult{}, err
		}
		if n > 0 {
			return ReleaseResult{Available: total, Clamped: true, Excess: excess}, nil
		}
	}
	return ReleaseResult{}, fmt.Errorf("release section %d: counter kept changing", sectionID)
}
