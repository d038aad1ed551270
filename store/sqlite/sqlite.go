/*
Package sqlite provides a SQLite-backed billing.Repository.

PURPOSE:
  Holds customers and meter readings in one database file so that the
  CLI and the HTTP server can bill from a single source instead of two
  CSV files. The CSV files remain the exchange format: Import copies
  any Repository (typically the CSV one) into the database.

KEY TABLES:
  customers:      One row per customer id, tariffs as decimal text
  meter_readings: Interval consumption per customer and date

INDEXES:
  - idx_meter_readings_customer_date: per-customer series lookup

DUPLICATES:
  meter_readings does not enforce one row per customer and date. Two
  readings on the same day are kept so the engine can report them as a
  malformed series rather than silently keeping one.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Readers do not block each other.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers do not block
  the single writer.

USAGE:
  store, err := sqlite.New("./invoices.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := billing.NewEngine(store)

SEE ALSO:
  - billing/store.go: Repository interface
  - store/csv: CSV implementation, source for Import
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/meter-invoice/billing"
)

const dateLayout = "2006-01-02"

var _ billing.Repository = (*Store)(nil)

// Store implements billing.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		street TEXT,
		postcode TEXT,
		city TEXT,
		base_tariff TEXT NOT NULL,
		energy_tariff TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meter_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL,
		reading_date TEXT NOT NULL,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_meter_readings_customer_date
		ON meter_readings(customer_id, reading_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// SaveCustomer inserts or updates a customer.
func (s *Store) SaveCustomer(ctx context.Context, c billing.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCustomer(ctx, s.db, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveCustomer(ctx context.Context, db execer, c billing.Customer) error {
	query := `
		INSERT INTO customers (id, name, street, postcode, city, base_tariff, energy_tariff, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			street = excluded.street,
			postcode = excluded.postcode,
			city = excluded.city,
			base_tariff = excluded.base_tariff,
			energy_tariff = excluded.energy_tariff,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.Name,
		nullString(c.Street), nullString(c.Postcode), nullString(c.City),
		c.BaseTariff.String(), c.EnergyTariff.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetCustomer retrieves a customer by ID. Returns nil, nil when absent.
func (s *Store) GetCustomer(ctx context.Context, id string) (*billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, street, postcode, city, base_tariff, energy_tariff FROM customers WHERE id = ?",
		id,
	)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCustomers returns all customers ordered by id.
func (s *Store) LoadCustomers(ctx context.Context) ([]billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, street, postcode, city, base_tariff, energy_tariff FROM customers ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []billing.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (billing.Customer, error) {
	var (
		c                    billing.Customer
		street, postcode     sql.NullString
		city                 sql.NullString
		baseTariff, energyTf string
	)
	if err := row.Scan(&c.ID, &c.Name, &street, &postcode, &city, &baseTariff, &energyTf); err != nil {
		return billing.Customer{}, err
	}
	c.Street, c.Postcode, c.City = street.String, postcode.String, city.String

	var err error
	if c.BaseTariff, err = decimal.NewFromString(baseTariff); err != nil {
		return billing.Customer{}, fmt.Errorf("customer %s: base tariff: %w", c.ID, err)
	}
	if c.EnergyTariff, err = decimal.NewFromString(energyTf); err != nil {
		return billing.Customer{}, fmt.Errorf("customer %s: energy tariff: %w", c.ID, err)
	}
	return c, nil
}

// =============================================================================
// METER READINGS
// =============================================================================

// AddReadings appends readings in a single transaction.
func (s *Store) AddReadings(ctx context.Context, readings ...billing.MeterReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertReadings(ctx, tx, readings); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertReadings(ctx context.Context, db execer, readings []billing.MeterReading) error {
	for _, r := range readings {
		_, err := db.ExecContext(ctx,
			"INSERT INTO meter_readings (customer_id, reading_date, value) VALUES (?, ?, ?)",
			r.CustomerID, r.Date.Time.Format(dateLayout), r.Value.String(),
		)
		if err != nil {
			return fmt.Errorf("insert reading %s/%s: %w", r.CustomerID, r.Date, err)
		}
	}
	return nil
}

// LoadMeterReadings returns all readings ordered by customer and date.
func (s *Store) LoadMeterReadings(ctx context.Context) ([]billing.MeterReading, error) {
	return s.queryReadings(ctx,
		"SELECT customer_id, reading_date, value FROM meter_readings ORDER BY customer_id, reading_date, id",
	)
}

// LoadCustomerReadings returns the readings of one customer in one year.
func (s *Store) LoadCustomerReadings(ctx context.Context, customerID string, year int) ([]billing.MeterReading, error) {
	return s.queryReadings(ctx,
		`SELECT customer_id, reading_date, value FROM meter_readings
		 WHERE customer_id = ? AND reading_date >= ? AND reading_date <= ?
		 ORDER BY reading_date, id`,
		customerID,
		billing.NewDate(year, time.January, 1).Time.Format(dateLayout),
		billing.NewDate(year, time.December, 31).Time.Format(dateLayout),
	)
}

func (s *Store) queryReadings(ctx context.Context, query string, args ...any) ([]billing.MeterReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []billing.MeterReading{}
	for rows.Next() {
		var (
			r           billing.MeterReading
			date, value string
		)
		if err := rows.Scan(&r.CustomerID, &date, &value); err != nil {
			return nil, err
		}
		if r.Date, err = billing.ParseDate(date); err != nil {
			return nil, fmt.Errorf("reading of %s: %w", r.CustomerID, err)
		}
		if r.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("reading of %s on %s: %w", r.CustomerID, date, err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// =============================================================================
// IMPORT / RESET
// =============================================================================

// Import replaces the database contents with everything src holds.
// It runs in one transaction; on error the previous contents survive.
func (s *Store) Import(ctx context.Context, src billing.Repository) (customers, readings int, err error) {
	cs, err := src.LoadCustomers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("import customers: %w", err)
	}
	rs, err := src.LoadMeterReadings(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("import meter readings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM meter_readings", "DELETE FROM customers"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, 0, err
		}
	}
	for _, c := range cs {
		if err := saveCustomer(ctx, tx, c); err != nil {
			return 0, 0, fmt.Errorf("import customer %s: %w", c.ID, err)
		}
	}
	if err := insertReadings(ctx, tx, rs); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return len(cs), len(rs), nil
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"meter_readings", "customers"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
