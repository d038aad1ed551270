package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/config"
	"github.com/warp/meter-invoice/store"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, backend string) *config.Config {
	return &config.Config{
		Backend:      backend,
		CustomerFile: filepath.Join("csv", "testdata", "customers.csv"),
		ValuesFile:   filepath.Join("csv", "testdata", "meter_values.csv"),
		SQLite:       config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db"), SeedFromCSV: true},
	}
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendCSV, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			repo, closeFn, err := store.Open(ctx, testConfig(t, backend), zap.NewNop())
			require.NoError(t, err)
			defer closeFn()

			p, _ := billing.NewBillingPeriod(2021, 2)
			inv, err := billing.NewEngine(repo).Invoice(ctx, "6789", p)

			require.NoError(t, err)
			assert.Equal(t, "2163.40", inv.EnergyPrice.StringFixed(2))
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := store.Open(context.Background(), testConfig(t, "redis"), zap.NewNop())
	assert.Error(t, err)
}

func TestOpen_SeedFailsOnMissingCSV(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	cfg.CustomerFile = "missing.csv"

	_, _, err := store.Open(context.Background(), cfg, zap.NewNop())

	assert.ErrorIs(t, err, billing.ErrFileNotFound)
}
