/*
Package billing computes monthly utility invoices from irregular meter readings.

PURPOSE:
  A customer's meter is read at arbitrary dates. Each reading records the
  consumption of the interval that ends on its date. This package turns
  one customer's readings for one year into the consumption of a single
  calendar month, and prices it together with a pro-rated base fee.

PIPELINE (all pure, see engine.go):
  1. NewReadingSeries: filter by customer and year, sort by date
  2. Validate:         readings must exist before and after the month
  3. Allocate:         day-weighted share per interior reading
  4. Synthesize:       fill the month if no share landed in it
  5. Price:            base + energy, rounded up to cents

KEY CONCEPTS IN THIS FILE (types.go):
  - Customer, MeterReading: immutable input records
  - ReadingSeries: sorted readings of one customer and year
  - AllocatedShare: consumption imputed to the month of its date
  - Invoice: the finished, write-once result

PRECISION:
  All quantities and money are decimal.Decimal. Rounding is always
  "up" (away from zero): whole units for consumption, cents for money.

SEE ALSO:
  - engine.go: Compute and the repository-backed Engine
  - tariff.go: Base and energy price
*/
package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================

type Customer struct {
	ID           string
	Name         string
	Street       string
	Postcode     string
	City         string
	BaseTariff   decimal.Decimal // currency per year
	EnergyTariff decimal.Decimal // cents per unit
}

// MeterReading is the consumption of the interval ending on Date.
// It is not a cumulative counter.
type MeterReading struct {
	Date       Date
	CustomerID string
	Value      decimal.Decimal
}

// =============================================================================
// READING SERIES
// =============================================================================

// ReadingSeries holds one customer's readings inside one billing year,
// ascending by date.
type ReadingSeries struct {
	CustomerID string
	Year       int
	Readings   []MeterReading
}

// NewReadingSeries filters readings down to customerID and year and sorts them.
// The input slice is not modified.
func NewReadingSeries(readings []MeterReading, customerID string, year int) ReadingSeries {
	var filtered []MeterReading
	for _, r := range readings {
		if r.CustomerID == customerID && r.Date.Year() == year {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	return ReadingSeries{CustomerID: customerID, Year: year, Readings: filtered}
}

func (s ReadingSeries) Len() int            { return len(s.Readings) }
func (s ReadingSeries) First() MeterReading { return s.Readings[0] }
func (s ReadingSeries) Last() MeterReading  { return s.Readings[len(s.Readings)-1] }

// ValueAt returns the raw reading recorded on d, if any.
func (s ReadingSeries) ValueAt(d Date) (decimal.Decimal, bool) {
	for _, r := range s.Readings {
		if r.Date.Equal(d) {
			return r.Value, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// ALLOCATED SHARE
// =============================================================================

type ShareKind int

const (
	// ShareInterior is allocated from an interior reading and its neighbours.
	ShareInterior ShareKind = iota
	// ShareFallback is the raw last reading appended when only one share exists.
	ShareFallback
	// ShareSynthesized fills a month that no share landed in.
	ShareSynthesized
)

func (k ShareKind) String() string {
	switch k {
	case ShareInterior:
		return "interior"
	case ShareFallback:
		return "fallback"
	case ShareSynthesized:
		return "synthesized"
	default:
		return "unknown"
	}
}

// AllocatedShare is the consumption imputed to the calendar month of Date.
// Source is the raw reading recorded on Date; for synthesized shares it
// equals Value.
type AllocatedShare struct {
	Date   Date
	Value  decimal.Decimal
	Source decimal.Decimal
	Kind   ShareKind
}

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is the computed result for one customer and one month.
// Consumption is the whole-unit figure shown next to the energy price.
type Invoice struct {
	Customer    Customer
	Period      BillingPeriod
	Days        int
	Consumption decimal.Decimal
	BasePrice   decimal.Decimal
	EnergyPrice decimal.Decimal
	TotalPrice  decimal.Decimal
	Shares      []AllocatedShare
}

// =============================================================================
// ROUNDING
// =============================================================================

// RoundUnits rounds a quantity up to whole units.
func RoundUnits(d decimal.Decimal) decimal.Decimal { return d.RoundUp(0) }

// RoundCents rounds money up to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal { return d.RoundUp(2) }
