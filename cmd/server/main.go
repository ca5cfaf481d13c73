// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/tomtom215/gamecatalog/docs"

	"github.com/tomtom215/gamecatalog/internal/aggregator"
	"github.com/tomtom215/gamecatalog/internal/api"
	"github.com/tomtom215/gamecatalog/internal/auth"
	"github.com/tomtom215/gamecatalog/internal/authz"
	"github.com/tomtom215/gamecatalog/internal/backup"
	"github.com/tomtom215/gamecatalog/internal/catalog"
	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/database"
	"github.com/tomtom215/gamecatalog/internal/eventprocessor"
	"github.com/tomtom215/gamecatalog/internal/logging"
	"github.com/tomtom215/gamecatalog/internal/metrics"
	"github.com/tomtom215/gamecatalog/internal/store"
	"github.com/tomtom215/gamecatalog/internal/supervisor"
	"github.com/tomtom215/gamecatalog/internal/supervisor/services"
	ws "github.com/tomtom215/gamecatalog/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("store", cfg.Store.Backend).
		Str("transport", cfg.Events.Transport).
		Msg("Starting Gamecatalog")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Server stopped")
}

// run wires every component and blocks until a shutdown signal arrives or
// the supervisor tree terminates.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := database.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()
	docs := store.New(backend)
	logging.Info().Str("backend", backend.Name()).Bool("in_memory", cfg.Store.InMemory).Msg("Document store opened")

	var backups *backup.Manager
	if cfg.Backup.Enabled {
		backups, err = backup.NewManager(backup.ConfigFrom(&cfg.Backup, version), backend)
		if err != nil {
			return fmt.Errorf("create backup manager: %w", err)
		}
		logging.Info().Str("dir", cfg.Backup.Dir).Int("snapshots", backups.Stats().Count).Msg("Store snapshots enabled")
	}

	// The embedded server lives outside the supervisor tree: it must accept
	// connections before the bus dials it and outlive the router on shutdown.
	embedded, err := startEmbeddedNATS(cfg)
	if err != nil {
		return err
	}
	if embedded != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := embedded.Shutdown(shutdownCtx); err != nil {
				logging.Error().Err(err).Msg("Failed to stop embedded NATS server")
			}
		}()
	}

	bus, err := eventprocessor.NewBus(ctx, &cfg.Events)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close event bus")
		}
	}()

	agg, err := aggregator.New(docs, bus.Publisher(), aggregator.Config{
		RollupPolicy: cfg.Rollup.Policy,
		MaxPlayTime:  cfg.Plays.MaxSessionSeconds,
	})
	if err != nil {
		return fmt.Errorf("create aggregator: %w", err)
	}
	if err := agg.Subscribe(bus, cfg.Events.AutoRollup); err != nil {
		return fmt.Errorf("subscribe aggregator: %w", err)
	}
	if !cfg.Events.AutoRollup {
		logging.Warn().Msg("Automatic category rollup is disabled; category stats refresh only on reconcile or manual recompute")
	}

	svc := catalog.NewService(docs, agg, bus.Publisher(), catalog.ConfigFrom(cfg))
	if err := seedAdmin(ctx, cfg, svc); err != nil {
		return err
	}

	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
		if err := hub.Subscribe(bus); err != nil {
			return fmt.Errorf("subscribe websocket hub: %w", err)
		}
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("create JWT manager: %w", err)
	}
	authMW, err := auth.NewMiddleware(jwtManager, svc, &cfg.Security)
	if err != nil {
		return fmt.Errorf("create auth middleware: %w", err)
	}
	defer authMW.Stop()
	warnInsecureSettings(cfg)

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfigFrom(&cfg.Security.Casbin))
	if err != nil {
		return fmt.Errorf("create authorization enforcer: %w", err)
	}
	defer enforcer.Close()

	handler := api.NewHandler(api.Dependencies{
		Catalog:      svc,
		Store:        docs,
		JWT:          jwtManager,
		Auth:         authMW,
		Passwords:    auth.PasswordPolicy{MinLength: cfg.Security.PasswordMinLength},
		Bus:          bus,
		Hub:          hub,
		Backups:      backups,
		CORSOrigins:  cfg.Security.CORSOrigins,
		CookieSecure: cfg.Security.CookieSecure,
		Version:      version,
	})
	router := api.NewRouter(
		handler,
		authMW,
		authz.NewMiddleware(enforcer),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		cfg.Server.Environment != "production",
	)

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	tree, err := buildTree(cfg, bus, hub, agg, backend, backups, router.Setup())
	if err != nil {
		return err
	}

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, u := range report {
			logging.Warn().Str("service", u.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	return nil
}

// buildTree registers the long-running services. The HTTP server is held
// back until the event router is running so no request can publish into a
// transport without subscribers.
func buildTree(cfg *config.Config, bus *eventprocessor.Bus, hub *ws.Hub, agg *aggregator.Aggregator, backend store.Backend, backups *backup.Manager, h http.Handler) (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddMessagingService(services.NewEventRouterService(bus))
	if hub != nil {
		tree.AddMessagingService(services.NewWebSocketHubService(hub))
	}

	if spec := cfg.Rollup.ReconcileSchedule; spec != "" {
		job, err := services.NewScheduledJobService("reconcile", spec, reconcileJob(agg), services.WithRunOnStart())
		if err != nil {
			return nil, fmt.Errorf("schedule reconcile: %w", err)
		}
		tree.AddMaintenanceService(job)
		logging.Info().Str("schedule", spec).Msg("Reconcile job scheduled")
	}

	if gc, ok := backend.(database.GarbageCollector); ok && cfg.Store.GCSchedule != "" {
		job, err := services.NewScheduledJobService("store-gc", cfg.Store.GCSchedule, func(context.Context) error {
			return gc.RunGC()
		})
		if err != nil {
			return nil, fmt.Errorf("schedule store gc: %w", err)
		}
		tree.AddMaintenanceService(job)
	}

	if backups != nil && cfg.Backup.Schedule != "" {
		job, err := services.NewScheduledJobService("backup", cfg.Backup.Schedule, backups.RunScheduled)
		if err != nil {
			return nil, fmt.Errorf("schedule backups: %w", err)
		}
		tree.AddMaintenanceService(job)
		logging.Info().Str("schedule", cfg.Backup.Schedule).Msg("Snapshot job scheduled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout).StartAfter(bus.Running()))

	return tree, nil
}

func reconcileJob(agg *aggregator.Aggregator) services.Job {
	return func(ctx context.Context) error {
		report, err := agg.Reconcile(ctx)
		if err != nil {
			return err
		}
		logging.Info().
			Int("games", report.GamesScanned).
			Int("ratings_repaired", report.RatingsRepaired).
			Int("favorites_repaired", report.FavoritesRepaired).
			Int("categories", report.Categories).
			Dur("duration", report.Duration).
			Msg("Reconcile finished")
		return nil
	}
}

func startEmbeddedNATS(cfg *config.Config) (*eventprocessor.EmbeddedServer, error) {
	if cfg.Events.Transport != config.TransportNATS || !cfg.Events.EmbeddedServer {
		return nil, nil
	}
	serverCfg := eventprocessor.DefaultServerConfig()
	serverCfg.Host = cfg.Events.EmbeddedHost
	serverCfg.Port = cfg.Events.EmbeddedPort
	serverCfg.StoreDir = cfg.Events.EmbeddedStoreDir

	srv, err := eventprocessor.NewEmbeddedServer(&serverCfg)
	if err != nil {
		return nil, fmt.Errorf("start embedded NATS server: %w", err)
	}
	cfg.Events.NATSURL = srv.ClientURL()
	logging.Info().Str("url", cfg.Events.NATSURL).Msg("Embedded NATS server started")
	return srv, nil
}

// seedAdmin creates the configured admin account when it does not exist.
func seedAdmin(ctx context.Context, cfg *config.Config, svc *catalog.Service) error {
	sec := cfg.Security
	if sec.AdminUsername == "" || sec.AdminPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(sec.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := svc.EnsureAdmin(ctx, sec.AdminUsername, sec.AdminEmail, hash)
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	if created {
		logging.Info().Str("username", logging.SanitizeUsername(sec.AdminUsername)).Msg("Admin account created")
	}
	return nil
}

func warnInsecureSettings(cfg *config.Config) {
	if cfg.Security.AuthMode == "none" {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); every request is anonymous unless it carries a valid token")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.Server.Environment == "production" {
		for _, origin := range cfg.Security.CORSOrigins {
			if origin == "*" {
				logging.Warn().Msg("CORS_ORIGINS=* in production allows any website to call the API")
				break
			}
		}
		if !cfg.Security.CookieSecure {
			logging.Warn().Msg("COOKIE_SECURE=false in production sends the session cookie over plain HTTP")
		}
	}
}
