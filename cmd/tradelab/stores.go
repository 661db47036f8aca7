package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/config"
	"trade-journal-lab/internal/pipeline"
	"trade-journal-lab/internal/storage"
	chstore "trade-journal-lab/internal/storage/clickhouse"
	"trade-journal-lab/internal/storage/memory"
	pgstore "trade-journal-lab/internal/storage/postgres"
	"trade-journal-lab/internal/storage/sqlite"
)

// openStores connects the configured backend, applies migrations and, when
// a ClickHouse DSN is set, routes summaries there. The returned close
// function releases every connection.
func openStores(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (*storage.Stores, func() error, error) {
	var (
		stores  *storage.Stores
		closers []func() error
	)

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	switch cfg.Driver {
	case config.DriverMemory:
		stores = memory.NewStores()

	case config.DriverSQLite:
		if cfg.SQLitePath != sqlite.MemoryPath {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		stores = db.Stores()

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		if err := pgstore.Migrate(ctx, pool); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		stores = pool.Stores()

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.Migrate(ctx, cfg.ClickhouseDSN)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		closers = append(closers, conn.Close)
		stores.StrategySummaries = chstore.NewStrategySummaryStore(conn)
		stores.CampaignSummaries = chstore.NewCampaignSummaryStore(conn)
	}

	logger.WithFields(logrus.Fields{
		"driver":     cfg.Driver,
		"clickhouse": cfg.ClickhouseDSN != "",
	}).Debug("opened stores")

	return stores, closeAll, nil
}

// withStores opens the stores, loads fixtures when requested and runs fn.
func (a *app) withStores(ctx context.Context, fn func(*storage.Stores) error) error {
	stores, closeStores, err := openStores(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStores(); err != nil {
			a.logger.WithError(err).Warn("close stores")
		}
	}()

	if a.fixtures {
		if err := pipeline.LoadFixtures(ctx, stores); err != nil {
			return err
		}
		a.logger.Info("loaded demonstration journal")
	}

	return fn(stores)
}
