package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kazip/minesweeper-server/internal/config"
	"github.com/kazip/minesweeper-server/internal/httpapi"
	"github.com/kazip/minesweeper-server/internal/logging"
	"github.com/kazip/minesweeper-server/internal/ratelimit"
	"github.com/kazip/minesweeper-server/internal/reaper"
	"github.com/kazip/minesweeper-server/internal/registry"
)

func main() {
	cfg := config.Load()
	log := logging.Init(cfg.LogLevel)

	reg := registry.New()
	limiter := ratelimit.New(cfg.RateLimitGamesPerMinute, nil)

	reapCtx, cancelReap := context.WithCancel(context.Background())
	defer cancelReap()
	rp := reaper.New(reg, cfg.CleanupInterval, cfg.ActiveGameTimeout, cfg.InactiveGameTimeout, log)
	go rp.Run(reapCtx)

	api := httpapi.New(reg, limiter, log, cfg.DefaultBoardWidth, cfg.DefaultBoardHeight, cfg.DefaultBombCount)

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Routes(cfg.CORSAllowedOrigins),
	}

	go func() {
		log.Info("server started", "addr", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancelReap()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGraceSeconds)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
