// Package queue defines the messages exchanged over RabbitMQ together with
// the publisher and the background consumers that process them.
package queue

import "time"

// Broker topology.  Everything is published to one durable topic exchange;
// the queues below are bound to it by routing key.
const (
	DefaultExchange = "tickets"

	KeyTicketReserved  = "ticket.reserved"
	KeyTicketCancelled = "ticket.cancelled"
	KeyInventoryRepair = "inventory.repair"

	AuditQueue  = "tickets.audit"    // bound to ticket.*
	RepairQueue = "inventory.repair" // bound to inventory.repair
)

// TicketEvent is published after a ticket is reserved or cancelled.  It
// carries enough to write the audit log without querying the database.
type TicketEvent struct {
	Type          string    `json:"type"` // routing key, e.g. ticket.reserved
	TicketID      uint64    `json:"ticket_id"`
	EventID       uint64    `json:"event_id"`
	SeatSectionID uint64    `json:"seat_section_id"`
	UserID        uint64    `json:"user_id"`
	Quantity      int       `json:"quantity"`
	Available     int       `json:"available_seats"` // section availability right after the change, -1 if unknown
	OccurredAt    time.Time `json:"occurred_at"`
}

// InventoryRepairTask asks the repair consumer to credit Quantity seats
// back to a section.  It is queued when a compensating release could not
// be applied inline.  TaskID makes the repair idempotent: a task is
// applied at most once however often it is delivered.
type InventoryRepairTask struct {
	TaskID        string    `json:"task_id"`
	EventID       uint64    `json:"event_id"`
	SeatSectionID uint64    `json:"seat_section_id"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
