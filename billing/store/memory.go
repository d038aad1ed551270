// Package store provides Repository implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/meter-invoice/billing"
)

// =============================================================================
// MEMORY REPOSITORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers []billing.Customer
	readings  []billing.MeterReading
}

func NewMemory() *Memory {
	return &Memory{}
}

// AddCustomer stores a customer, replacing any record with the same id.
func (m *Memory) AddCustomer(c billing.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == c.ID {
			m.customers[i] = c
			return
		}
	}
	m.customers = append(m.customers, c)
}

// AddReadings appends meter readings in the given order.
func (m *Memory) AddReadings(readings ...billing.MeterReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, readings...)
}

// LoadCustomers returns a copy of all customers.
func (m *Memory) LoadCustomers(_ context.Context) ([]billing.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Customer, len(m.customers))
	copy(out, m.customers)
	return out, nil
}

// LoadMeterReadings returns a copy of all readings.
func (m *Memory) LoadMeterReadings(_ context.Context) ([]billing.MeterReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.MeterReading, len(m.readings))
	copy(out, m.readings)
	return out, nil
}

// Verify interface compliance
var _ billing.Repository = (*Memory)(nil)
