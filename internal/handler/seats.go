package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service"
)

// SeatHandler manages seat sections.  Seat counters are read-only here:
// they move only through reservations and cancellations.
type SeatHandler struct {
	Sections *repository.SectionRepo
	Events   *service.EventService
	Auditor  *service.Auditor
	Log      *slog.Logger
}

func NewSeatHandler(sections *repository.SectionRepo, events *service.EventService, auditor *service.Auditor, log *slog.Logger) *SeatHandler {
	return &SeatHandler{Sections: sections, Events: events, Auditor: auditor, Log: log}
}

type createSectionReq struct {
	EventID    uint64 `json:"event_id"    validate:"required"`
	Section    string `json:"section"     validate:"required,max=16"`
	TotalSeats int    `json:"total_seats" validate:"min=0"`
}

// List handles GET /seats?event_id=&available_only=.
func (h *SeatHandler) List(c echo.Context) error {
	eventID, ok := queryID(c, "event_id")
	if !ok || eventID == 0 {
		return badRequest(c, "event_id required")
	}
	availableOnly, _ := strconv.ParseBool(c.QueryParam("available_only"))
	ctx, cancel := requestCtx(c)
	defer cancel()

	sections, err := h.Sections.ListByEvent(ctx, eventID, availableOnly)
	if err != nil {
		return fail(c, h.Log, "handler.SeatHandler.List", err)
	}
	return c.JSON(http.StatusOK, sections)
}

// Get handles GET /seats/:id.
func (h *SeatHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid seat section id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	s, err := h.Sections.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Get", err)
	}
	return c.JSON(http.StatusOK, s)
}

// Create handles POST /seats.  The new section starts fully available.
func (h *SeatHandler) Create(c echo.Context) error {
	var req createSectionReq
	if msg, ok := bindValid(c, &req); !ok {
		return badRequest(c, msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if _, err := h.Events.Get(ctx, req.EventID); err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Create", err)
	}
	s := &model.SeatSection{EventID: req.EventID, Section: strings.TrimSpace(req.Section), TotalSeats: req.TotalSeats}
	if err := h.Sections.Create(ctx, s); err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Create", err)
	}
	return c.JSON(http.StatusCreated, s)
}

// Update handles PUT /seats/:id.  Only the label may change; a body that
// touches available_seats or total_seats is rejected.
func (h *SeatHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid seat section id")
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	for _, k := range []string{"available_seats", "total_seats"} {
		if _, found := body[k]; found {
			return badRequest(c, k+" cannot be changed directly; book or cancel tickets instead")
		}
	}
	var label string
	if raw, found := body["section"]; !found || json.Unmarshal(raw, &label) != nil || strings.TrimSpace(label) == "" {
		return badRequest(c, "section required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Sections.Rename(ctx, id, strings.TrimSpace(label)); err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Update", err)
	}
	s, err := h.Sections.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Update", err)
	}
	return c.JSON(http.StatusOK, s)
}

// Audit handles GET /seats/:id/audit.
func (h *SeatHandler) Audit(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid seat section id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Auditor.AuditSection(ctx, id)
	if err != nil {
		return fail(c, h.Log, "handler.SeatHandler.Audit", err)
	}
	return c.JSON(http.StatusOK, a)
}
