package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/middleware"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service"
)

// TicketHandler books and cancels tickets for the session user.
type TicketHandler struct {
	Reservations  *service.ReservationService
	Cancellations *service.CancellationService
	Tickets       *repository.TicketRepo
	Log           *slog.Logger
}

func NewTicketHandler(r *service.ReservationService, cn *service.CancellationService, t *repository.TicketRepo, log *slog.Logger) *TicketHandler {
	return &TicketHandler{Reservations: r, Cancellations: cn, Tickets: t, Log: log}
}

type reserveReq struct {
	EventID       uint64 `json:"event_id"        validate:"required"`
	SeatSectionID uint64 `json:"seat_section_id" validate:"required"`
	Quantity      int    `json:"quantity"        validate:"required,min=1"`
}

// Reserve handles POST /tickets.
func (h *TicketHandler) Reserve(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req reserveReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	t, err := h.Reservations.Reserve(ctx, service.ReserveRequest{
		EventID:       req.EventID,
		SeatSectionID: req.SeatSectionID,
		Quantity:      req.Quantity,
	}, who)
	if err != nil {
		return fail(c, h.Log, "handler.TicketHandler.Reserve", err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Cancel handles DELETE /tickets/:id.
func (h *TicketHandler) Cancel(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Cancellations.Cancel(ctx, id, who); err != nil {
		return fail(c, h.Log, "handler.TicketHandler.Cancel", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /tickets.  Users see their own tickets; admins see all
// of them, or one user's with ?user_id=.
func (h *TicketHandler) List(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	userID := who.UserID
	if who.IsAdmin() {
		var valid bool
		if userID, valid = queryID(c, "user_id"); !valid {
			return badRequest(c, "invalid user_id")
		}
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	tickets, err := h.Tickets.List(ctx, userID)
	if err != nil {
		return fail(c, h.Log, "handler.TicketHandler.List", err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Details handles GET /ticket_details for the session user.
func (h *TicketHandler) Details(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	details, err := h.Tickets.Details(ctx, who.UserID)
	if err != nil {
		return fail(c, h.Log, "handler.TicketHandler.Details", err)
	}
	return c.JSON(http.StatusOK, details)
}
