package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-ledger/internal/config"
	"github.com/iliyamo/club-ledger/internal/database"
	"github.com/iliyamo/club-ledger/internal/handler"
	"github.com/iliyamo/club-ledger/internal/logger"
	"github.com/iliyamo/club-ledger/internal/queue"
	"github.com/iliyamo/club-ledger/internal/repository"
	"github.com/iliyamo/club-ledger/internal/router"
	"github.com/iliyamo/club-ledger/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(os.Stderr, "info", "json")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}

func run(cfg config.Config, log zerolog.Logger) error {
	if cfg.DBDriver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return err
		}
	}
	if err := database.Migrate(cfg.DBDriver, cfg.DSN()); err != nil {
		return err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	users := repository.NewUserRepo(db)
	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		cancel()
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.AdminEmail).Msg("admin account created")
		}
	}

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- services ----
	bookingRepo := repository.NewBookingRepo(db)
	matchRepo := repository.NewMatchRepo(db)
	playerRepo := repository.NewPlayerRepo(db)

	settings := service.NewSettingsService(repository.NewSettingRepo(db))
	opts := service.BookingOptions{Settlement: cfg.Settlement, Logger: log}
	if cfg.QueueEnabled {
		opts.Publisher = queue.NewPublisher(cfg.AMQPURL, log)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.QueueLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("booking consumer stopped")
			}
		}()
	}
	bookings := service.NewBookingService(bookingRepo, matchRepo, settings, opts)
	revenue := service.NewRevenueService(repository.NewRevenueRepo(db), bookingRepo, log)
	reports := service.NewReportService(bookings, revenue, settings, playerRepo, matchRepo)

	// ---- HTTP ----
	hopts := handler.Options{Logger: log, ExposeErrors: !cfg.IsProd()}
	e := router.New(router.Deps{Config: cfg, Redis: rdb, Logger: log, Options: hopts}, router.Handlers{
		Health:    handler.NewHealthHandler(db, hopts),
		Auth:      handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin, hopts),
		Bookings:  handler.NewBookingHandler(bookings, hopts),
		Revenue:   handler.NewRevenueHandler(revenue, hopts),
		Settings:  handler.NewSettingsHandler(settings, hopts),
		Catalog:   handler.NewCatalogHandler(matchRepo, playerRepo, hopts),
		Dashboard: handler.NewDashboardHandler(reports, hopts),
	})

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("settlement", cfg.Settlement).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("signal received, shutting down")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
