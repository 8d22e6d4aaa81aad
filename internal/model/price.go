package model

import "fmt"

// Price is the unit price of one seat in a section.  Amounts are kept in
// cents to avoid floating point rounding.
type Price struct {
	ID            uint64 `json:"id"`
	EventID       uint64 `json:"event_id"`
	SeatSectionID uint64 `json:"seat_section_id"`
	PriceCents    int64  `json:"price_cents"`
}

// FormatCents renders an amount of cents as a decimal string, e.g. 45000 -> "450.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
