package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/meter-invoice/billing"
)

func TestValidate_BracketedMonth_Passes(t *testing.T) {
	s := series(marchWithTwoReadings())
	assert.NoError(t, billing.Validate(s, period(t, 2021, 3)))
}

func TestValidate_RejectsUnbracketedMonths(t *testing.T) {
	// Readings run from February 8 to April 27.
	s := series(marchWithTwoReadings())

	tests := []struct {
		name  string
		month int
	}{
		{"target is the first reading's month", 2},
		{"target before the first reading", 1},
		{"target is the last reading's month", 4},
		{"target after the last reading", 5},
		{"target far after the last reading", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := billing.Validate(s, period(t, 2021, tt.month))

			require.Error(t, err)
			assert.ErrorIs(t, err, billing.ErrInsufficientHistory)
			var hist *billing.InsufficientHistoryError
			require.ErrorAs(t, err, &hist)
			assert.Equal(t, 2021, hist.Period.Year)
			assert.True(t, billing.IsClientError(err))
			assert.False(t, billing.IsNotFound(err))
		})
	}
}

func TestValidate_ReadingInsideTargetMonthDoesNotCount(t *testing.T) {
	// GIVEN: The earliest reading lies on the first day of the target month
	// WHEN: Validating
	// THEN: The past check fails even though the day is a boundary day

	readings := []billing.MeterReading{
		reading("1", date(2021, time.March, 1), "10"),
		reading("1", date(2021, time.March, 20), "10"),
		reading("1", date(2021, time.May, 1), "10"),
	}
	err := billing.Validate(series(readings), period(t, 2021, 3))
	assert.ErrorIs(t, err, billing.ErrInsufficientHistory)
}

func TestValidate_EmptySeries(t *testing.T) {
	err := billing.Validate(billing.ReadingSeries{}, period(t, 2021, 3))
	assert.True(t, errors.Is(err, billing.ErrInsufficientHistory))
}
