package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/config"
	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/handler"
	"github.com/i-reserve/room-reservation/internal/logging"
	"github.com/i-reserve/room-reservation/internal/queue"
	"github.com/i-reserve/room-reservation/internal/repository"
	"github.com/i-reserve/room-reservation/internal/router"
	"github.com/i-reserve/room-reservation/internal/service"
	"github.com/i-reserve/room-reservation/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logrus.WithError(err).Fatal("schema migration failed")
		}
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		logrus.Warn("redis unavailable: rate limiting in memory, response cache and session revocation off")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
	}

	rooms := repository.NewRoomRepo(db)
	buildings := repository.NewBuildingRepo(db)
	users := repository.NewUserRepo(db)
	reservations := repository.NewReservationRepo(db)
	messages := repository.NewMessageRepo(db)
	revoked := repository.NewSessionRepo(rdb, "")

	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	accounts := service.NewAccountService(users, sessions, revoked, cfg.BcryptCost)
	directory := service.NewDirectoryService(rooms, buildings)

	renderer, err := view.New()
	if err != nil {
		logrus.WithError(err).Fatal("templates failed to parse")
	}

	e := router.New(renderer, accounts, router.Handlers{
		Auth: handler.NewAuthHandler(accounts, cfg.CookieSecure),
		General: handler.NewGeneralHandler(
			directory,
			service.NewProfileService(users, reservations),
			service.NewContactService(messages, events),
			cfg.CookieSecure,
		),
		Reservations: handler.NewReservationHandler(
			service.NewReservationService(rooms, reservations, users, events, service.OwnerOrAdmin),
			directory,
		),
		Dashboard: handler.NewDashboardHandler(service.NewAdminService(rooms, buildings, users, messages, cfg.BcryptCost)),
	}, router.Options{
		CookieSecure: cfg.CookieSecure,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
		Redis:        rdb,
		DB:           db,
	})

	go func() {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": db.Dialect.String()}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
