package model

import "time"

// Home/away marker values stored in events.home_away.
const (
	Home = "Home"
	Away = "Away"
)

// Event is a single fixture.  Seat sections, prices and tickets hang off
// it and are removed together with it.
//
// Fields:
//
//	ID        – primary key identifier.
//	Date      – kick-off date and time (UTC).
//	Opponent  – name of the visiting or hosting team.
//	HomeAway  – Home or Away.
type Event struct {
	ID        uint64    `json:"id"`
	Date      time.Time `json:"date"`
	Opponent  string    `json:"opponent"`
	HomeAway  string    `json:"home_away"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventFilter narrows an event listing.
type EventFilter struct {
	HomeOnly bool   // only Home fixtures
	Query    string // case-insensitive substring of the opponent name
}
