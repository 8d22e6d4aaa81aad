package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/service"
)

// EventHandler serves the fixture list and its administration.
type EventHandler struct {
	Events *service.EventService
	Log    *slog.Logger
}

func NewEventHandler(events *service.EventService, log *slog.Logger) *EventHandler {
	return &EventHandler{Events: events, Log: log}
}

type eventReq struct {
	Date     time.Time `json:"date"      validate:"required"`
	Opponent string    `json:"opponent"  validate:"required,max=255"`
	HomeAway string    `json:"home_away" validate:"required,oneof=Home Away"`
}

func (r eventReq) input() service.EventInput {
	return service.EventInput{Date: r.Date.UTC(), Opponent: r.Opponent, HomeAway: r.HomeAway}
}

// List handles GET /events?home_only=&q=.
func (h *EventHandler) List(c echo.Context) error {
	homeOnly, _ := strconv.ParseBool(c.QueryParam("home_only"))
	ctx, cancel := requestCtx(c)
	defer cancel()

	events, err := h.Events.List(ctx, model.EventFilter{
		HomeOnly: homeOnly,
		Query:    strings.TrimSpace(c.QueryParam("q")),
	})
	if err != nil {
		return fail(c, h.Log, "handler.EventHandler.List", err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	e, err := h.Events.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, "handler.EventHandler.Get", err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create handles POST /events.  The response carries the generated
// sections.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	e, sections, err := h.Events.Create(ctx, req.input())
	if err != nil {
		return fail(c, h.Log, "handler.EventHandler.Create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": e, "sections": sections})
}

// Update handles PUT /events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	var req eventReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	e, err := h.Events.Update(ctx, id, req.input())
	if err != nil {
		return fail(c, h.Log, "handler.EventHandler.Update", err)
	}
	return c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /events/:id.  Sections, prices and tickets go
// with it.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "handler.EventHandler.Delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
