// Package main is the entry point for the month calendar web UI server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/month-calendar/webui/internal/api"
	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/config"
	"github.com/month-calendar/webui/internal/eventsync"
	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/remote"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuring logger: %v\n", err)
		os.Exit(1)
	}
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	log := logging.Component(logger, "server")
	log.WithField("version", version).Info("starting month calendar")

	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.WithError(err).Warn("failed to set GOMAXPROCS")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable store
	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	log.WithField("path", db.Path()).Info("database opened")

	if err := storage.RunMigrations(ctx, db, logging.Component(logger, "storage")); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	slots := storage.NewSlotRepository(db)
	events := store.New(storage.SavedEventsSlot, slots, logging.Component(logger, "store"))
	if err := events.Load(ctx, slots); err != nil {
		log.WithError(err).Warn("saved events unreadable, starting empty")
	}

	hub := websocket.NewHub(logging.Component(logger, "websocket"))
	go hub.Run(ctx)
	broadcaster := websocket.NewEventBroadcaster(hub)

	client := remote.NewClient(cfg.Remote.BaseURL,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		logging.Component(logger, "remote"))

	loader := calendar.NewLoader(client, events, logging.Component(logger, "loader"))
	loader.Refresh(ctx)

	sess := session.New(loc)
	sess.OnChange = func(st session.State) { broadcaster.BroadcastSessionChanged(st) }

	syncService := eventsync.NewService(client, events, sess, loader, broadcaster,
		logging.Component(logger, "eventsync"))

	scheduler := calendar.NewScheduler(loader, hub, cfg.RefreshCron, logging.Component(logger, "scheduler"))
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("starting refresh scheduler: %w", err)
	}
	defer scheduler.Stop()

	router := api.NewRouter(api.Services{
		DB:        db,
		Store:     events,
		Loader:    loader,
		Session:   sess,
		Sync:      syncService,
		Hub:       hub,
		Scheduler: scheduler,
		WeekStart: calendar.ParseWeekStart(cfg.WeekStart),
		StaticDir: cfg.StaticDir,
		Log:       logging.Component(logger, "http"),
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Listen).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("parsing listen address: %w", err)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://localhost:" + port + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
