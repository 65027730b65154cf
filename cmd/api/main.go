package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/schemeportal/internal/app"
	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/config"
	schemeHttp "github.com/MrJamesThe3rd/schemeportal/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/budget"
	locationHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/location"
	proposalHandler "github.com/MrJamesThe3rd/schemeportal/internal/http/proposal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireAuth()
	}

	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.Logger(cfg, os.Stdout)
	slog.SetDefault(logger)

	db, err := app.Open(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	services := app.NewServices(db, cfg, logger)

	router := schemeHttp.New(
		schemeHttp.Options{
			Verifier:    auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
			CORSOrigins: cfg.Server.CORSOrigins,
			Timeout:     cfg.Server.Timeout,
			Health:      db.PingContext,
		},
		budgetHandler.NewHandler(services.Budget),
		proposalHandler.NewHandler(services.Proposals),
		locationHandler.NewHandler(services.Locations, cfg.Server.MaxUpload),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
