package ports

import (
	"context"

	"github.com/iliyamo/stadium-tickets/internal/model"
)

type TicketRepo interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	Delete(ctx context.Context, id uint64) error
	LiveQuantity(ctx context.Context, sectionID uint64) (int, error)
}
