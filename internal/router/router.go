package router

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/handler"
	"github.com/iliyamo/stadium-tickets/internal/middleware"
	"github.com/iliyamo/stadium-tickets/internal/model"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth    *handler.AuthHandler
	Events  *handler.EventHandler
	Seats   *handler.SeatHandler
	Prices  *handler.PriceHandler
	Tickets *handler.TicketHandler
}

// Deps are the shared infrastructure pieces used by middleware.  Redis
// may be nil, which turns caching and rate limiting off.
type Deps struct {
	Cfg   config.Config
	DB    *sql.DB
	Redis *redis.Client
	Log   *slog.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(d.Cfg.Otel.ServiceName))
	e.Use(middleware.RequestLogger(d.Log))

	e.GET("/healthz", handler.Health(d.DB))

	auth := middleware.JWTAuth(d.Cfg.Auth.JWTSecret, d.Cfg.Auth.CookieName)
	admin := []echo.MiddlewareFunc{auth, middleware.RequireRole(model.RoleAdmin)}

	RegisterAuth(e, h.Auth, auth)
	RegisterPublic(e, h, middleware.NewRedisCache(d.Cfg.Cache, d.Redis, d.Log))
	purge := middleware.PurgeCache(d.Cfg.Cache, d.Redis, d.Log)

	RegisterAdmin(e, h, admin, purge)
	RegisterTickets(e, h.Tickets, auth, middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis, d.Log), purge)
	return e
}

// RegisterAuth registers registration and session endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	e.POST("/users", a.Register)
	e.POST("/login", a.Login)
	e.POST("/login/refresh", a.Refresh)
	e.GET("/login", a.Session, auth)
	e.DELETE("/login", a.Logout, auth)
}

// RegisterPublic registers the read-only browse endpoints.  Responses are
// cached in Redis.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	e.GET("/events", h.Events.List, cache)
	e.GET("/events/:id", h.Events.Get, cache)
	e.GET("/seats", h.Seats.List, cache)
	e.GET("/seats/:id", h.Seats.Get, cache)
	e.GET("/price", h.Prices.List, cache)
}
