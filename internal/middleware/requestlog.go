package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLogger assigns every request an X-Request-ID (keeping one the
// client sent) and logs one line per completed request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	log = log.With(slog.String("component", "middleware/requestlog"))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				slog.String("request_id", rid),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("remote_addr", c.RealIP()),
				slog.Int("status", c.Response().Status),
				slog.Int64("bytes", c.Response().Size),
				slog.String("duration", time.Since(start).String()),
			}
			if id, ok := IdentityFrom(c); ok {
				attrs = append(attrs, slog.Uint64("user_id", id.UserID))
			}
			if c.Response().Status >= 500 {
				log.Error("request completed", attrs...)
			} else {
				log.Info("request completed", attrs...)
			}
			return nil
		}
	}
}
