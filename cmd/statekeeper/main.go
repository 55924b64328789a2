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

	"golang.org/x/sync/errgroup"

	"github.com/dmarve/statekeeper/internal/config"
	"github.com/dmarve/statekeeper/internal/game/tx"
	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/server"
	"github.com/dmarve/statekeeper/internal/snapshot"
	"github.com/dmarve/statekeeper/internal/world"
)

// shutdownFlushTimeout bounds the final snapshot pass; missing it exits
// non-zero.
const shutdownFlushTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cancel); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc) error {
	engCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading engine config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: engCfg.SlogLevel(),
	})))
	slog.Info("statekeeper starting", "log_level", engCfg.LogLevel)

	gameCfg, err := gamedata.Load(engCfg.GameConfigPath)
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}
	slog.Info("game config loaded",
		"configId", gameCfg.ConfigID,
		"maxLevel", gameCfg.MaxLevel,
		"classes", len(gameCfg.Classes),
		"gearDefs", len(gameCfg.GearDefs))

	store, err := snapshot.NewStore(engCfg.SnapshotDir)
	if err != nil {
		return err
	}

	proc := tx.New(gameCfg, engCfg.AdminAPIKey)
	w := world.New(gameCfg, proc, store, engCfg.TxCacheLimit)
	if err := w.Restore(); err != nil {
		return err
	}

	srv := server.New(w, engCfg.E2EShutdown, cancel)
	httpServer := &http.Server{
		Addr:    engCfg.Addr(),
		Handler: srv.Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return w.RunFlusher(gctx, engCfg.SnapshotInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	flushCtx, stop := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer stop()
	if err := w.FlushAll(flushCtx); err != nil {
		return fmt.Errorf("shutdown snapshot flush: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}
