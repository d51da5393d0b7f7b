// Command devbackend runs an in-memory stand-in for the PR Business REST API
// with seeded demo accounts. It is for local development only.
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

	"github.com/prbusiness/dashboard/internal/devbackend"
	"github.com/prbusiness/dashboard/internal/infrastructure/config"
	"github.com/prbusiness/dashboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDevBackend(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env != "production", Service: "devbackend"})

	seeds := devbackend.DefaultSeeds()
	dir, err := devbackend.NewDirectory(seeds, 0)
	if err != nil {
		return err
	}
	for _, s := range seeds {
		log.Info().Str("phone", s.PhoneNumber).Str("nickname", s.Nickname).Msg("seeded account")
	}

	srv := devbackend.NewServer(dir, devbackend.NewIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL), log)
	e := srv.Router()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Port).Msg("dev backend listening")
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
