package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/stadium-tickets/internal/repository"
)

// Ledger is the idempotent release used to apply repair tasks.
type Ledger interface {
	ReleaseOnce(ctx context.Context, taskID string, sectionID uint64, qty int) (repository.ReleaseResult, error)
}

// RepairHandler applies InventoryRepairTask messages to the ledger.
type RepairHandler struct {
	Ledger Ledger
	Log    *slog.Logger
}

// Handle applies one task.  Redelivered tasks are acknowledged without
// effect; tasks for sections that no longer exist are dropped; anything
// else that fails is retried.
func (h *RepairHandler) Handle(ctx context.Context, body []byte) error {
	const op = "queue.RepairHandler.Handle"

	var task InventoryRepairTask
	if err := json.Unmarshal(body, &task); err != nil {
		return Permanent(fmt.Errorf("%s: unmarshal: %w", op, err))
	}
	if task.TaskID == "" || task.SeatSectionID == 0 || task.Quantity <= 0 {
		return Permanent(fmt.Errorf("%s: malformed task %+v", op, task))
	}
	log := h.Log.With(
		slog.String("op", op),
		slog.String("task_id", task.TaskID),
		slog.Uint64("event_id", task.EventID),
		slog.Uint64("seat_section_id", task.SeatSectionID),
		slog.Int("delta", task.Quantity),
	)

	res, err := h.Ledger.ReleaseOnce(ctx, task.TaskID, task.SeatSectionID, task.Quantity)
	switch {
	case errors.Is(err, repository.ErrRepairApplied):
		log.Info("repair already applied")
		return nil
	case errors.Is(err, repository.ErrSectionNotFound):
		log.Warn("repair target section no longer exists")
		return Permanent(err)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.Clamped {
		log.Error("ConsistencyViolation",
			slog.String("reason", "repair release clamped at total_seats"),
			slog.Int("excess", res.Excess),
		)
		return nil
	}
	log.Info("repair applied", slog.Int("available_seats", res.Available), slog.String("reason", task.Reason))
	return nil
}
