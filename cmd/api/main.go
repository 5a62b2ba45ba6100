package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentalmarket/internal/bootstrap"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/jwt"
	"rentalmarket/internal/server"
	"rentalmarket/internal/storage"
)

func main() {
	cfg, err := bootstrap.Config()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.Database(cfg)
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	locker, closeLocker, err := bootstrap.Locker(ctx, cfg.Redis)
	if err != nil {
		logger.Error("lock setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Error("storage setup failed", "error", err)
		os.Exit(1)
	}

	app := server.New(server.Deps{
		Config:  cfg,
		DB:      db,
		JWT:     jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
		Storage: blobs,
		Locker:  locker,
	})

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.App.HTTPAddr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
