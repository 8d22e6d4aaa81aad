package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers the event, section and price administration
// endpoints.  guard must authenticate the caller and require the admin
// role; purge runs after every write.
func RegisterAdmin(e *echo.Echo, h Handlers, guard []echo.MiddlewareFunc, purge echo.MiddlewareFunc) {
	write := append(append([]echo.MiddlewareFunc{}, guard...), purge)

	e.POST("/events", h.Events.Create, write...)
	e.PUT("/events/:id", h.Events.Update, write...)
	e.DELETE("/events/:id", h.Events.Delete, write...)

	e.POST("/seats", h.Seats.Create, write...)
	e.PUT("/seats/:id", h.Seats.Update, write...)
	e.GET("/seats/:id/audit", h.Seats.Audit, guard...)

	e.POST("/price", h.Prices.Create, write...)
	e.PUT("/price/:id", h.Prices.Update, write...)
}
