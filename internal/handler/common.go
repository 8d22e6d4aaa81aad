package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/logger"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New()} }

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// bindValid binds the request body into dst and validates it.  On
// failure it returns the message to send with a 400.
func bindValid(c echo.Context, dst any) (string, bool) {
	if err := c.Bind(dst); err != nil {
		return "invalid body", false
	}
	if err := c.Validate(dst); err != nil {
		return err.Error(), false
	}
	return "", true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional positive numeric query parameter; 0 means absent.
func queryID(c echo.Context, name string) (uint64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id > 0
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// statusFor maps service and repository errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, repository.ErrInsufficientCapacity),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrSectionNotFound),
		errors.Is(err, repository.ErrPriceNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidQuantity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}.  Internal errors are logged and
// their details are not sent to the client.
func fail(c echo.Context, log *slog.Logger, op string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.String("op", op), logger.Err(err))
		if errors.Is(err, service.ErrConsistencyViolation) {
			return c.JSON(status, echo.Map{"error": "seat inventory could not be restored, please contact support"})
		}
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
