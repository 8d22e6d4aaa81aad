package ports

import (
	"context"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
)

// SectionRepo is the inventory ledger as seen by the services.
type SectionRepo interface {
	GetByID(ctx context.Context, id uint64) (*model.SeatSection, error)
	TryReserve(ctx context.Context, sectionID uint64, qty int) (int, error)
	Release(ctx context.Context, sectionID uint64, qty int) (repository.ReleaseResult, error)
}
