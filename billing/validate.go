package billing

// monthIndex orders months across years.
func monthIndex(year int, month int) int { return year*12 + month - 1 }

func dateMonthIndex(d Date) int            { return monthIndex(d.Year(), int(d.Month())) }
func periodMonthIndex(p BillingPeriod) int { return monthIndex(p.Year, int(p.Month)) }

// Validate checks that the series brackets the period: the first reading
// must fall in an earlier month and the last reading in a later month.
// A reading inside the target month satisfies neither side.
//
// Either failure is reported as a single *InsufficientHistoryError.
func Validate(series ReadingSeries, period BillingPeriod) error {
	target := periodMonthIndex(period)

	if series.Len() == 0 {
		return &InsufficientHistoryError{Period: period, cause: errPastBoundary}
	}

	first, last := series.First().Date, series.Last().Date
	if dateMonthIndex(first) >= target {
		return &InsufficientHistoryError{Period: period, First: first, Last: last, cause: errPastBoundary}
	}
	if dateMonthIndex(last) <= target {
		return &InsufficientHistoryError{Period: period, First: first, Last: last, cause: errFutureBoundary}
	}
	return nil
}
