/*
errors.go - Error kinds raised while computing an invoice

PURPOSE:
  Every failure the billing pipeline can produce, in one place.
  Each kind has a sentinel for errors.Is() and a structured type that
  carries the identifying context (customer, period, dates).

ERROR CATEGORIES:
  1. Lookup errors - customer, readings or input file missing
  2. History errors - the reading series does not bracket the month
  3. Series errors - zero-day spans, no share for the target month

PROPAGATION:
  Every error aborts the computation for that customer and period.
  Nothing is retried here; retry policy belongs to the caller.

SEE ALSO:
  - validate.go: InsufficientHistoryError
  - allocate.go: MalformedSeriesError
  - engine.go: CustomerNotFoundError, NoReadingsError
  - api/handlers.go: Maps categories to HTTP status codes
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCustomerNotFound is returned when no customer record matches the id.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoReadingsForYear is returned when the customer has no meter
	// readings in the billing year.
	ErrNoReadingsForYear = errors.New("no meter readings for year")

	// ErrInsufficientHistory is returned when the readings do not reach
	// into a month before and a month after the target month.
	ErrInsufficientHistory = errors.New("not sufficient data available")

	// ErrMalformedSeries is returned when two adjacent readings share a date.
	ErrMalformedSeries = errors.New("malformed reading series")

	// ErrNoDataForMonth is returned when no allocated share maps to the target month.
	ErrNoDataForMonth = errors.New("no data for month")

	// ErrFileNotFound is returned by file-backed repositories when an input path is missing.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPeriod is returned for a month outside 1..12 or a non-positive year.
	ErrInvalidPeriod = errors.New("invalid billing period")
)

// Causes hidden behind ErrInsufficientHistory. Callers see one kind;
// logs and tests can still tell which side was short.
var (
	errPastBoundary   = errors.New("first reading is not before the target month")
	errFutureBoundary = errors.New("last reading is not after the target month")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer with id %s not found", e.CustomerID)
}

func (e *CustomerNotFoundError) Unwrap() error { return ErrCustomerNotFound }

type NoReadingsError struct {
	CustomerID string
	Year       int
}

func (e *NoReadingsError) Error() string {
	return fmt.Sprintf("no meter readings for customer %s in %d", e.CustomerID, e.Year)
}

func (e *NoReadingsError) Unwrap() error { return ErrNoReadingsForYear }

// InsufficientHistoryError is the single error raised by Validate.
// It unwraps to both ErrInsufficientHistory and the failed boundary check.
type InsufficientHistoryError struct {
	Period BillingPeriod
	First  Date
	Last   Date
	cause  error
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s for %s (readings %s to %s)", ErrInsufficientHistory, e.Period, e.First, e.Last)
}

func (e *InsufficientHistoryError) Unwrap() []error {
	return []error{ErrInsufficientHistory, e.cause}
}

// MalformedSeriesError reports a zero-day span between two readings.
type MalformedSeriesError struct {
	Date  Date
	Other Date
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed reading series: zero-day span between %s and %s", e.Other, e.Date)
}

func (e *MalformedSeriesError) Unwrap() error { return ErrMalformedSeries }

type NoDataForMonthError struct {
	Period BillingPeriod
}

func (e *NoDataForMonthError) Error() string {
	return fmt.Sprintf("no allocated consumption for %s", e.Period)
}

func (e *NoDataForMonthError) Unwrap() error { return ErrNoDataForMonth }

type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return ErrFileNotFound }

type InvalidPeriodError struct {
	Year   int
	Month  int
	Reason string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid billing period %d-%02d: %s", e.Year, e.Month, e.Reason)
}

func (e *InvalidPeriodError) Unwrap() error { return ErrInvalidPeriod }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates missing input data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrNoReadingsForYear) ||
		errors.Is(err, ErrFileNotFound)
}

// IsClientError returns true if the requested period cannot be billed
// from the data on hand.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrMalformedSeries) ||
		errors.Is(err, ErrNoDataForMonth) ||
		errors.Is(err, ErrInvalidPeriod)
}
