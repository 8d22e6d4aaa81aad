package model

import "time"

// Ticket is one reservation of Quantity seats in a section.  It is
// created by a reservation and removed by a cancellation; it is never
// updated in place.
type Ticket struct {
	ID            uint64    `json:"id"`
	EventID       uint64    `json:"event_id"`
	SeatSectionID uint64    `json:"seat_section_id"`
	UserID        uint64    `json:"user_id"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketDetail is the joined read view used by the "my tickets" page.
type TicketDetail struct {
	TicketID      uint64    `json:"ticket_id"`
	EventID       uint64    `json:"event_id"`
	Date          time.Time `json:"date"`
	Opponent      string    `json:"opponent"`
	HomeAway      string    `json:"home_away"`
	SeatSectionID uint64    `json:"seat_section_id"`
	Section       string    `json:"section"`
	Quantity      int       `json:"quantity"`
	PriceCents    int64     `json:"price_cents"` // unit price, zero when no price row exists
}
