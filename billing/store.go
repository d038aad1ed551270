package billing

import "context"

// =============================================================================
// REPOSITORY INTERFACE
// =============================================================================

// Repository supplies the input records. Implementations return every
// record they hold; the engine does the filtering by customer and year.
//
// Implementations must be safe for concurrent readers. File-backed
// implementations return an error wrapping ErrFileNotFound when their
// source is missing.
//
// Implementations:
//   - billing/store.Memory: in-memory, for tests and the HTTP demo
//   - store/csv.Repository: customers.csv and meter_values.csv
//   - store/sqlite.Store: SQLite database
type Repository interface {
	LoadCustomers(ctx context.Context) ([]Customer, error)
	LoadMeterReadings(ctx context.Context) ([]MeterReading, error)
}
