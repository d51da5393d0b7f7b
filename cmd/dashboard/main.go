// Command dashboard serves the PR Business dashboard: sign-in, the
// role-aware navigation shell and the session JSON endpoints.
//
// @title        PR Business Dashboard API
// @version      1.0
// @description  Session, navigation and role endpoints of the PR Business dashboard gateway.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/prbusiness/dashboard/internal/api"
	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/ports"
	"github.com/prbusiness/dashboard/internal/core/service"
	"github.com/prbusiness/dashboard/internal/infrastructure/backend"
	"github.com/prbusiness/dashboard/internal/infrastructure/config"
	"github.com/prbusiness/dashboard/internal/infrastructure/db/memory"
	"github.com/prbusiness/dashboard/internal/infrastructure/db/mongo"
	"github.com/prbusiness/dashboard/internal/infrastructure/db/redis"
	"github.com/prbusiness/dashboard/internal/infrastructure/queue"
	"github.com/prbusiness/dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard",
	})

	// --- Session storage ---
	var (
		storage ports.StorageProvider
		rdb     *goredis.Client
	)
	switch cfg.Session.Driver {
	case "redis":
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		storage = redis.NewProvider(rdb, cfg.Session.TTL)
	default:
		storage = memory.NewProvider(cfg.Session.TTL)
	}
	log.Info().Str("driver", cfg.Session.Driver).Msg("session storage ready")

	// --- Session events ---
	handlers := []ports.SessionEventHandler{queue.NewObserver(logger.Component("session-events"))}
	var (
		events ports.SessionEventRepository
		mdb    *gomongo.Database
	)
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := mongo.Disconnect(client, shutdownTimeout); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()

		repo := mongo.NewSessionEventRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		events, mdb = repo, db
		handlers = append(handlers, queue.NewAuditRecorder(repo))
		log.Info().Str("database", cfg.Mongo.Database).Msg("session audit trail enabled")
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, logger.Component("dispatcher"), handlers...)
	dispatcher.Start(workersCtx)

	// --- Backend and services ---
	gateway := backend.New(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, logger.Component("backend"))
	policy := access.Default(cfg.Mode())

	e, err := api.NewRouter(api.Deps{
		Log:      log,
		Policy:   policy,
		Auth:     service.NewAuthService(gateway, logger.Component("auth")),
		Switcher: service.NewRoleSwitcher(gateway, logger.Component("role-switcher")),
		Session: middleware.SessionOptions{
			Secret:  cfg.JWTSecret,
			TTL:     cfg.Session.TTL,
			Secure:  cfg.Session.CookieSecure,
			Storage: storage,
			Events:  dispatcher,
			Log:     logger.Component("session"),
		},
		Locale: cfg.Locale,
		Events: events,
		Mongo:  mdb,
		Redis:  rdb,
	})
	if err != nil {
		stopWorkers()
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("nav_policy", string(policy.Mode())).Msg("dashboard listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serverErr:
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := e.Shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	return err
}
