// Package store selects the billing.Repository backend from configuration.
package store

import (
	"context"
	"fmt"

	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/config"
	csvstore "github.com/warp/meter-invoice/store/csv"
	"github.com/warp/meter-invoice/store/sqlite"
	"go.uber.org/zap"
)

// Open returns the configured repository and a function releasing it.
// The sqlite backend is seeded from the CSV files when configured to.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (billing.Repository, func() error, error) {
	files := csvstore.New(cfg.CustomerFile, cfg.ValuesFile)

	switch cfg.Backend {
	case config.BackendCSV:
		return files, func() error { return nil }, nil

	case config.BackendSQLite:
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SQLite.SeedFromCSV {
			customers, readings, err := db.Import(ctx, files)
			if err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("seed %s: %w", cfg.SQLite.Path, err)
			}
			logger.Info("sqlite seeded from csv",
				zap.String("db", cfg.SQLite.Path),
				zap.Int("customers", customers),
				zap.Int("readings", readings),
			)
		}
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
