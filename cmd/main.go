/*
Package main is the entry point for the PairChat server.

It loads configuration, initializes logging, selects the storage backends, starts the
websocket hub and the HTTP server, and shuts everything down gracefully on SIGINT or SIGTERM.
*/
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

	"github.com/joho/godotenv"

	"pairchat/internal/app/backend"
	"pairchat/internal/app/chat"
	"pairchat/internal/app/conversation"
	"pairchat/internal/configs"
	"pairchat/internal/handler"
	"pairchat/internal/pkg/logx"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("database_configured", cfg.DatabaseDSN != "").
		Bool("redis_configured", cfg.RedisURL != "").
		Bool("s3_configured", cfg.S3Configured()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := backend.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize backends")
	}
	defer backends.Close()

	hub := chat.NewHub(backends.Messages)

	deps := &handler.AppDeps{
		Hub:       hub,
		Config:    cfg,
		Messages:  backends.Messages,
		Directory: backends.Directory,
		Blobs:     backends.Blobs,
		Contacts:  conversation.NewAssembler(backends.Messages, hub.Registry().IsOnline, cfg.ContactListDropEmpty),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(ctx, deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("PairChat Server starting on http://localhost%s", serverAddr), "durable", backends.Durable())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked websocket connections are not tracked by Shutdown; close them first.
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
