package billing

import "github.com/shopspring/decimal"

// DaySplit divides the month of d at d: before is the number of days of
// the month that precede d, after is the rest (d included).
// before + after always equals the length of the month.
func DaySplit(d Date) (before, after int) {
	before = d.AddDays(-1).Day()
	if d.Day() == 1 {
		// the day before is in the previous month
		before = 0
	}
	return before, DaysInMonth(d.Year(), d.Month()) - before
}

// Allocate produces one share per interior reading. First and last
// readings only anchor the interpolation.
//
// For an interior reading d with neighbours p and n, the days of d's month
// before d are charged at the daily rate of (p, d], the remaining days at
// the rate of (d, n]:
//
//	share = before/|d-p| * v_d + after/|n-d| * v_n
//
// The sum is formed as one fraction and rounded up to whole units.
func Allocate(series ReadingSeries) ([]AllocatedShare, error) {
	if series.Len() < 3 {
		return nil, nil
	}

	shares := make([]AllocatedShare, 0, series.Len()-2)
	for i := 1; i < series.Len()-1; i++ {
		prev, cur, next := series.Readings[i-1], series.Readings[i], series.Readings[i+1]

		spanBefore := DaysBetween(prev.Date, cur.Date)
		if spanBefore == 0 {
			return nil, &MalformedSeriesError{Date: cur.Date, Other: prev.Date}
		}
		spanAfter := DaysBetween(cur.Date, next.Date)
		if spanAfter == 0 {
			return nil, &MalformedSeriesError{Date: next.Date, Other: cur.Date}
		}

		before, after := DaySplit(cur.Date)

		// before*v_d*spanAfter + after*v_n*spanBefore, over spanBefore*spanAfter
		num := decimal.NewFromInt(int64(before)).Mul(cur.Value).Mul(decimal.NewFromInt(int64(spanAfter))).
			Add(decimal.NewFromInt(int64(after)).Mul(next.Value).Mul(decimal.NewFromInt(int64(spanBefore))))
		den := decimal.NewFromInt(int64(spanBefore) * int64(spanAfter))

		shares = append(shares, AllocatedShare{
			Date:   cur.Date,
			Value:  RoundUnits(num.Div(den)),
			Source: cur.Value,
			Kind:   ShareInterior,
		})
	}
	return shares, nil
}
