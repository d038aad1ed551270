package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// BILLING PERIOD - One calendar month of one year
// =============================================================================

// BillingPeriod identifies the month an invoice is computed for.
// The billing year is the year of the period; readings from other
// years never take part in the computation.
type BillingPeriod struct {
	Year  int
	Month time.Month
}

// NewBillingPeriod validates year and month.
func NewBillingPeriod(year int, month int) (BillingPeriod, error) {
	p := BillingPeriod{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return BillingPeriod{}, err
	}
	return p, nil
}

func (p BillingPeriod) Validate() error {
	if p.Year <= 0 {
		return &InvalidPeriodError{Year: p.Year, Month: int(p.Month), Reason: "year must be positive"}
	}
	if p.Month < time.January || p.Month > time.December {
		return &InvalidPeriodError{Year: p.Year, Month: int(p.Month), Reason: "month must be between 1 and 12"}
	}
	return nil
}

func (p BillingPeriod) Start() Date { return NewDate(p.Year, p.Month, 1) }
func (p BillingPeriod) End() Date   { return NewDate(p.Year, p.Month, p.Days()) }
func (p BillingPeriod) Days() int   { return DaysInMonth(p.Year, p.Month) }

// Contains returns true if the date falls in [Start, End].
func (p BillingPeriod) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// String returns the period as YYYY-MM.
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Range is the human readable span printed on reports,
// e.g. "01.03.2021 bis 31.03.2021".
func (p BillingPeriod) Range() string {
	return p.Start().GermanString() + " bis " + p.End().GermanString()
}
