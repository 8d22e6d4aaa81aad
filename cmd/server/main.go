package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/database"
	"github.com/iliyamo/stadium-tickets/internal/handler"
	"github.com/iliyamo/stadium-tickets/internal/logger"
	"github.com/iliyamo/stadium-tickets/internal/obs"
	"github.com/iliyamo/stadium-tickets/internal/queue"
	"github.com/iliyamo/stadium-tickets/internal/repository"
	"github.com/iliyamo/stadium-tickets/internal/router"
	"github.com/iliyamo/stadium-tickets/internal/service"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)
	log.Info("starting stadium-tickets", slog.String("env", cfg.Env), slog.String("db_driver", cfg.DB.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		log.Error("tracer init failed", logger.Err(err))
		os.Exit(1)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Error("database open failed", logger.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db, cfg.DB.Driver, log); err != nil {
			log.Error("migrations failed", logger.Err(err))
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled", slog.String("addr", cfg.Redis.Address()))
	} else {
		defer rdb.Close()
	}

	pub := queue.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange, log)
	defer pub.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	sections := repository.NewSectionRepo(db)
	prices := repository.NewPriceRepo(db)
	tickets := repository.NewTicketRepo(db)

	compensator := service.NewCompensator(sections, pub, cfg.Ledger, log)
	reservations := service.NewReservationService(sections, tickets, pub, compensator, log)
	cancellations := service.NewCancellationService(tickets, pub, compensator, log)
	eventSvc := service.NewEventService(events, cfg.Sections, log)
	auditor := service.NewAuditor(sections, tickets, log)

	var wg sync.WaitGroup
	if cfg.Rabbit.Consumers {
		audit := &queue.AuditWriter{Dir: cfg.Rabbit.AuditLogDir}
		repair := &queue.RepairHandler{Ledger: sections, Log: log}
		for _, c := range []*queue.Consumer{
			{URL: cfg.Rabbit.URL, Exchange: cfg.Rabbit.Exchange, Queue: queue.AuditQueue, Handler: audit.Handle, Log: log, RetryDelay: time.Second},
			{URL: cfg.Rabbit.URL, Exchange: cfg.Rabbit.Exchange, Queue: queue.RepairQueue, Handler: repair.Handle, Log: log, RetryDelay: 5 * time.Second},
		} {
			wg.Add(1)
			go func(c *queue.Consumer) {
				defer wg.Done()
				c.Run(ctx)
			}(c)
		}
		log.Info("consumers started", slog.String("audit_log", audit.Path()))
	}

	e := router.New(router.Deps{Cfg: cfg, DB: db, Redis: rdb, Log: log}, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg.Auth, users, tokens, log),
		Events:  handler.NewEventHandler(eventSvc, log),
		Seats:   handler.NewSeatHandler(sections, eventSvc, auditor, log),
		Prices:  handler.NewPriceHandler(prices, sections, log),
		Tickets: handler.NewTicketHandler(reservations, cancellations, tickets, log),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Err(err))
	}
	wg.Wait()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", logger.Err(err))
	}
	log.Info("stopped")
}
