package model

import (
	"strconv"
	"strings"
)

// SeatSection is a block of undifferentiated seats within an event.  Its
// available_seats column is the one piece of shared mutable state in the
// system and only the inventory ledger writes it after creation.
//
// Fields:
//
//	ID             – primary key identifier.
//	EventID        – event the section belongs to.
//	Section        – label such as "A1" or "B24"; unique within the event.
//	TotalSeats     – capacity, fixed at creation.
//	AvailableSeats – seats not held by a live ticket, 0..TotalSeats.
type SeatSection struct {
	ID             uint64 `json:"id"`
	EventID        uint64 `json:"event_id"`
	Section        string `json:"section"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
}

// SectionLess orders labels by their leading letters and then by the
// numeric suffix, so "A2" sorts before "A10".
func SectionLess(a, b string) bool {
	ap, an := splitSection(a)
	bp, bn := splitSection(b)
	if ap != bp {
		return ap < bp
	}
	if an != bn {
		return an < bn
	}
	return a < b
}

func splitSection(label string) (string, int) {
	i := strings.IndexFunc(label, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return label, -1
	}
	n, err := strconv.Atoi(label[i:])
	if err != nil {
		return label, -1
	}
	return label[:i], n
}
