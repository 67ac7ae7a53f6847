package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dukerupert/pantrypal/internal/auth"
	"github.com/dukerupert/pantrypal/internal/config"
	"github.com/dukerupert/pantrypal/internal/database"
	"github.com/dukerupert/pantrypal/internal/logging"
	"github.com/dukerupert/pantrypal/internal/metrics"
	"github.com/dukerupert/pantrypal/internal/server"
	"github.com/dukerupert/pantrypal/internal/service"
	"github.com/dukerupert/pantrypal/internal/store"
	"github.com/dukerupert/pantrypal/internal/websocket"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	hub := websocket.NewHub(logger.With("component", "websocket"))
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	svc := service.New(service.Deps{
		Stores:   store.New(db),
		Metrics:  m,
		Notifier: hub,
		Logger:   logger,
	}, tokens)

	srv := server.New(cfg, svc, hub, tokens, m, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() {
		ticker := time.NewTicker(cfg.RateWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.SweepRateLimits()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("pantrypal listening", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
