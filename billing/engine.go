package billing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// COMPUTE - The pure pipeline
// =============================================================================

// Compute builds the invoice of customer for period from readings.
// readings may contain other customers and years; they are filtered out.
// The same inputs always produce the same invoice.
func Compute(customer Customer, readings []MeterReading, period BillingPeriod) (*Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	series := NewReadingSeries(readings, customer.ID, period.Year)
	if series.Len() == 0 {
		return nil, &NoReadingsError{CustomerID: customer.ID, Year: period.Year}
	}

	if err := Validate(series, period); err != nil {
		return nil, err
	}

	shares, err := Allocate(series)
	if err != nil {
		return nil, err
	}
	shares = Synthesize(shares, series, period)

	selected, err := SelectShare(shares, period)
	if err != nil {
		return nil, err
	}

	base := BasePrice(customer.BaseTariff, period)
	energy := EnergyPrice(selected.Value, customer.EnergyTariff)

	return &Invoice{
		Customer:    customer,
		Period:      period,
		Days:        period.Days(),
		Consumption: RoundUnits(selected.Value),
		BasePrice:   base,
		EnergyPrice: energy,
		TotalPrice:  base.Add(energy),
		Shares:      shares,
	}, nil
}

// =============================================================================
// ENGINE - Compute over a Repository
// =============================================================================

// Engine loads records from a Repository and computes invoices.
// It holds no state besides the repository and is safe for concurrent use
// when the repository is.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Customers returns all customer records.
func (e *Engine) Customers(ctx context.Context) ([]Customer, error) {
	customers, err := e.repo.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	return customers, nil
}

// Customer returns the record with the given id.
func (e *Engine) Customer(ctx context.Context, id string) (Customer, error) {
	customers, err := e.Customers(ctx)
	if err != nil {
		return Customer{}, err
	}
	return findCustomer(customers, id)
}

// Invoice computes the invoice of one customer for one period.
// Customers and readings are loaded concurrently.
func (e *Engine) Invoice(ctx context.Context, customerID string, period BillingPeriod) (*Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var (
		customers []Customer
		readings  []MeterReading
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = e.Customers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if readings, err = e.repo.LoadMeterReadings(gctx); err != nil {
			return fmt.Errorf("load meter readings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	customer, err := findCustomer(customers, customerID)
	if err != nil {
		return nil, err
	}
	return Compute(customer, readings, period)
}

func findCustomer(customers []Customer, id string) (Customer, error) {
	for _, c := range customers {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, &CustomerNotFoundError{CustomerID: id}
}
