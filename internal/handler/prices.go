package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
)

type PriceHandler struct {
	Prices   *repository.PriceRepo
	Sections *repository.SectionRepo
	Log      *slog.Logger
}

func NewPriceHandler(prices *repository.PriceRepo, sections *repository.SectionRepo, log *slog.Logger) *PriceHandler {
	return &PriceHandler{Prices: prices, Sections: sections, Log: log}
}

type createPriceReq struct {
	EventID       uint64 `json:"event_id"        validate:"required"`
	SeatSectionID uint64 `json:"seat_section_id" validate:"required"`
	PriceCents    int64  `json:"price_cents"     validate:"min=0"`
}

type updatePriceReq struct {
	PriceCents int64 `json:"price_cents" validate:"min=0"`
}

// List handles GET /price?event_id=.
func (h *PriceHandler) List(c echo.Context) error {
	eventID, ok := queryID(c, "event_id")
	if !ok || eventID == 0 {
		return badRequest(c, "event_id required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	prices, err := h.Prices.ListByEvent(ctx, eventID)
	if err != nil {
		return fail(c, h.Log, "handler.PriceHandler.List", err)
	}
	return c.JSON(http.StatusOK, prices)
}

// Create handles POST /price.  The section must belong to the event.
func (h *PriceHandler) Create(c echo.Context) error {
	var req createPriceReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	s, err := h.Sections.GetByID(ctx, req.SeatSectionID)
	if err != nil {
		return fail(c, h.Log, "handler.PriceHandler.Create", err)
	}
	if s.EventID != req.EventID {
		return badRequest(c, "seat section does not belong to event")
	}
	p := &model.Price{EventID: req.EventID, SeatSectionID: req.SeatSectionID, PriceCents: req.PriceCents}
	if err := h.Prices.Create(ctx, p); err != nil {
		return fail(c, h.Log, "handler.PriceHandler.Create", err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /price/:id.
func (h *PriceHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid price id")
	}
	var req updatePriceReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Prices.UpdateCents(ctx, id, req.PriceCents)
	if err != nil {
		return fail(c, h.Log, "handler.PriceHandler.Update", err)
	}
	return c.JSON(http.StatusOK, p)
}
