package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/handler"
)

// RegisterTickets registers booking endpoints for any signed-in user.
// Booking is rate limited per caller.  Booking and cancelling change
// available_seats, so both purge cached section responses.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, auth, limit, purge echo.MiddlewareFunc) {
	e.POST("/tickets", t.Reserve, auth, limit, purge)
	e.DELETE("/tickets/:id", t.Cancel, auth, purge)
	e.GET("/tickets", t.List, auth)
	e.GET("/ticket_details", t.Details, auth)
}
