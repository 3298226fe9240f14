package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"jobradar-engine/internal/config"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/events"
	"jobradar-engine/internal/httpapi"
	"jobradar-engine/internal/ingest"
	"jobradar-engine/internal/logger"
	"jobradar-engine/internal/match"
	"jobradar-engine/internal/scheduler"
	"jobradar-engine/internal/store"
)

func main() {
	dataDir := os.Getenv("JOBRADAR_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Single engine per data dir; sqlite has one writer and two schedulers
	// double-syncing every source helps no one.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance already owns %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	zl, err := logger.New(cfg.App.JSONLog, cfg.App.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if v := config.Validate(cfg); !v.OK() {
		for _, e := range v.Errors {
			zl.Error("config error", zap.String("detail", e))
		}
		os.Exit(1)
	} else {
		for _, warn := range v.Warnings {
			zl.Warn("config warning", zap.String("detail", warn))
		}
	}

	st, err := store.Open(filepath.Join(dataDir, "jobradar.db"))
	if err != nil {
		zl.Fatal("store open failed", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	hub := events.NewHub()

	coord := ingest.New(cfg, st, zl, func(p domain.Posting) {
		hub.Publish(events.Event{
			Type:     "job_created",
			Source:   p.Source,
			Company:  p.Company,
			Title:    p.Title,
			SourceID: p.SourceID,
		})
	})

	sched := scheduler.New(zl,
		func(ctx context.Context) ingest.Summary {
			sum := coord.SyncAll(ctx)
			hub.Publish(events.Event{Type: "sync_done"})
			return sum
		},
		coord.CleanupInactive,
		scheduler.Options{
			FirstDelay:    cfg.FirstDelay(),
			Interval:      cfg.Interval(),
			CleanupDays:   cfg.Sync.CleanupDaysOld,
			CleanupChance: cfg.Sync.CleanupChance,
		})
	sched.Start()
	defer sched.Stop()

	matcher := match.New(st, zl)

	handler := httpapi.NewHandler(httpapi.Deps{
		Store:   st,
		Coord:   coord,
		Sched:   sched,
		Matcher: matcher,
		Hub:     hub,
		Log:     zl,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		zl.Fatal("listen failed", zap.String("addr", addr), zap.Error(err))
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("engine listening", zap.String("addr", "http://"+addr))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			zl.Fatal("serve failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
