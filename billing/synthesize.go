package billing

import "github.com/shopspring/decimal"

// Synthesize makes sure the target month is represented among the shares.
// It returns a new slice; shares is left untouched.
//
// Two rules apply, in order:
//
//  1. Fallback: when allocation produced exactly one share and it lies
//     outside the target month, the raw last reading is appended unrounded.
//  2. Gap fill: at the first pair of neighbouring shares whose months
//     strictly enclose the target month, a share dated on the first of the
//     target month is inserted between them. Its value is the next share's
//     raw reading spread over the days between the pair, scaled to the
//     length of the target month. Only one gap is ever filled.
//
// The gap-fill value is kept at full precision; the energy price rounds it.
func Synthesize(shares []AllocatedShare, series ReadingSeries, period BillingPeriod) []AllocatedShare {
	out := make([]AllocatedShare, len(shares), len(shares)+2)
	copy(out, shares)

	if len(out) == 1 && !period.Contains(out[0].Date) && series.Len() > 0 {
		last := series.Last()
		out = append(out, AllocatedShare{
			Date:   last.Date,
			Value:  last.Value,
			Source: last.Value,
			Kind:   ShareFallback,
		})
	}

	target := periodMonthIndex(period)
	for i := 0; i+1 < len(out); i++ {
		cur, next := out[i], out[i+1]
		if !(dateMonthIndex(cur.Date) < target && target < dateMonthIndex(next.Date)) {
			continue
		}

		// months differ, so the span is at least one day
		span := DaysBetween(cur.Date, next.Date)
		value := decimal.NewFromInt(int64(period.Days())).
			Mul(next.Source).
			Div(decimal.NewFromInt(int64(span)))

		synthetic := AllocatedShare{
			Date:   period.Start(),
			Value:  value,
			Source: value,
			Kind:   ShareSynthesized,
		}
		out = append(out[:i+1], append([]AllocatedShare{synthetic}, out[i+1:]...)...)
		break
	}
	return out
}

// SelectShare picks the share that prices the target month.
//
// Among shares dated inside the period the later one wins, except that a
// synthesized share never displaces a genuine one (interior or fallback).
func SelectShare(shares []AllocatedShare, period BillingPeriod) (AllocatedShare, error) {
	var (
		best  AllocatedShare
		found bool
	)
	for _, s := range shares {
		if !period.Contains(s.Date) {
			continue
		}
		if found && s.Kind == ShareSynthesized && best.Kind != ShareSynthesized {
			continue
		}
		best, found = s, true
	}
	if !found {
		return AllocatedShare{}, &NoDataForMonthError{Period: period}
	}
	return best, nil
}
