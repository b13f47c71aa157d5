package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"budgetbook/internal/config"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := log.New(log.Config{Level: cfg.LogLevel, Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err, log.FieldPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	report := store.Bootstrap(ctx)
	for _, step := range report.Steps {
		if step.Err != nil {
			logger.Warn("Bootstrap step failed", log.FieldStep, step.Name, log.FieldError, step.Err)
		} else {
			logger.Debug("Bootstrap step completed", log.FieldStep, step.Name)
		}
	}
	if !report.OK() {
		logger.Warn("Store started in degraded state", "failed_steps", len(report.Failed()))
	}

	resolver, err := defaultResolver(ctx, store)
	if err != nil {
		logger.Error("Failed to resolve default tenant", log.FieldError, err)
		os.Exit(1)
	}

	svc := services.NewLedgerService(store, resolver,
		services.WithBackupDir(cfg.BackupDir),
		services.WithCategoryCacheTTL(cfg.CategoryCacheTTL),
	)

	stats, err := svc.GetStats(ctx)
	if err != nil {
		logger.Error("Failed to read store stats", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Store ready",
		log.FieldPath, cfg.SQLiteDBPath,
		"entries", stats.Entries,
		"budgets", stats.Budgets,
		"categories", stats.Categories,
		"tenants", stats.Tenants,
	)

	<-ctx.Done()
	logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
}

// defaultResolver pins the session to the seeded demo tenant. A real
// frontend would swap in its own resolver at login.
func defaultResolver(ctx context.Context, store *storage.Store) (services.TenantResolver, error) {
	t, err := store.FindTenantByEmail(ctx, storage.LegacyTenantEmail)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return services.StaticTenant{}, nil
	}
	return services.StaticTenant{Tenant: t}, nil
}
