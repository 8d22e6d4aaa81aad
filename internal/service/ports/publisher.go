package ports

import (
	"context"

	"github.com/iliyamo/stadium-tickets/internal/queue"
)

// Publisher sends ticket events and durable repair tasks to the broker.
type Publisher interface {
	PublishTicket(ctx context.Context, ev queue.TicketEvent) error
	PublishRepair(ctx context.Context, task queue.InventoryRepairTask) error
}
