package ports

import (
	"context"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
)

type EventRepo interface {
	Create(ctx context.Context, e *model.Event, seeds []repository.SectionSeed) ([]model.SeatSection, error)
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uint64) error
}
