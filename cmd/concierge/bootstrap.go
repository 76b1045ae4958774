package main

import (
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/approval"
	"concierge/internal/bus"
	"concierge/internal/capability"
	"concierge/internal/config"
	"concierge/internal/engine"
	"concierge/internal/gateway"
	"concierge/internal/metrics"
	"concierge/internal/policy"
	"concierge/internal/router"

	"github.com/prometheus/client_golang/prometheus"
)

// app bundles the wired components behind a command. Construction happens
// once at startup; request handling only reads from here.
type app struct {
	cfg        *config.Config
	supervisor *router.Supervisor
	approvals  *approval.Controller
	notifier   *bus.Notifier
	store      approval.Store
}

// buildApp wires registry, policy table, gateways, engine, checkpoint store
// and supervisor from config. withMetrics is off for one-shot commands so
// they do not register collectors they will never serve.
func buildApp(cfg *config.Config, withMetrics bool) (*app, error) {
	registry := capability.NewRegistry(logger)
	if err := capability.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("register builtin capabilities: %w", err)
	}

	specs, err := loadSpecs(cfg, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.NewClient(engine.Config{
		APIKey:  cfg.Engine.APIKey,
		APIBase: cfg.Engine.APIBase,
		Model:   cfg.Engine.Model,
		Timeout: time.Duration(cfg.Engine.TimeoutS) * time.Second,
		Logger:  logger,
	})

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	approvals := approval.NewController(approval.ControllerConfig{
		Store:         store,
		TTL:           time.Duration(cfg.Checkpoints.TTLHours) * time.Hour,
		Retention:     time.Duration(cfg.Checkpoints.RetainResolvedHours) * time.Hour,
		SweepInterval: time.Duration(cfg.Checkpoints.SweepIntervalMin) * time.Minute,
		Logger:        logger,
	})

	notifier := bus.New(logger)

	var m *metrics.Metrics
	if withMetrics && cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	supervisor, err := router.New(router.Config{
		Specs:         specs,
		Registry:      registry,
		Gateways:      []gateway.Provider{gateway.NewWiFi(), gateway.NewVideo(), gateway.NewBilling()},
		Engine:        eng,
		Approvals:     approvals,
		Notifier:      notifier,
		Metrics:       m,
		Logger:        logger,
		Strategy:      cfg.Router.Strategy,
		DefaultDomain: cfg.Router.DefaultDomain,
		MaxIterations: cfg.General.MaxIterations,
		MaxTokens:     cfg.Engine.MaxTokens,
		Temperature:   cfg.Engine.Temperature,
		CallTimeout:   time.Duration(cfg.General.InvokeTimeoutS) * time.Second,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build supervisor: %w", err)
	}

	return &app{
		cfg:        cfg,
		supervisor: supervisor,
		approvals:  approvals,
		notifier:   notifier,
		store:      store,
	}, nil
}

func (a *app) close() {
	a.notifier.Close()
	if err := a.store.Close(); err != nil {
		logger.Warn("closing checkpoint store", "err", err)
	}
}

// loadSpecs reads domain specs from the configured directory, falling back
// to the built-in set when the directory is absent or empty.
func loadSpecs(cfg *config.Config, logger *slog.Logger) ([]policy.DomainSpec, error) {
	specs, err := policy.LoadDir(cfg.General.DomainsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load domain specs: %w", err)
	}
	if len(specs) == 0 {
		logger.Info("no domain specs on disk, using built-in defaults", "dir", cfg.General.DomainsDir)
		specs = policy.DefaultSpecs()
	}
	return specs, nil
}

// openStore picks SQLite when a path is configured, in-memory otherwise.
func openStore(cfg *config.Config, logger *slog.Logger) (approval.Store, error) {
	if cfg.Checkpoints.DBPath == "" {
		logger.Warn("no checkpoint database configured, pending approvals will not survive restarts")
		return approval.NewMemoryStore(), nil
	}
	store, err := approval.NewSQLiteStore(cfg.Checkpoints.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return store, nil
}
