// Package csvstore reads customers and meter readings from CSV files.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/warp/meter-invoice/billing"
)

var _ billing.Repository = (*Repository)(nil)

// Repository reads its two files on every load, so edits to the files
// are picked up without a restart. Row errors fail the whole load: a
// silently dropped reading would change the invoice.
type Repository struct {
	CustomerFile string
	ValuesFile   string
}

func New(customerFile, valuesFile string) *Repository {
	return &Repository{CustomerFile: customerFile, ValuesFile: valuesFile}
}

func (r *Repository) LoadCustomers(ctx context.Context) ([]billing.Customer, error) {
	f, err := open(ctx, r.CustomerFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	customers, err := ParseCustomersCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse csv %q: %w", r.CustomerFile, err)
	}
	return customers, nil
}

func (r *Repository) LoadMeterReadings(ctx context.Context) ([]billing.MeterReading, error) {
	f, err := open(ctx, r.ValuesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	readings, err := ParseMeterReadingsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse csv %q: %w", r.ValuesFile, err)
	}
	return readings, nil
}

func open(ctx context.Context, path string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &billing.FileNotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	return f, nil
}
