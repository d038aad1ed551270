package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/meter-invoice/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) billing.Date {
	return billing.NewDate(year, month, day)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func reading(customerID string, d billing.Date, value string) billing.MeterReading {
	return billing.MeterReading{Date: d, CustomerID: customerID, Value: dec(value)}
}

func period(t *testing.T, year, month int) billing.BillingPeriod {
	t.Helper()
	p, err := billing.NewBillingPeriod(year, month)
	if err != nil {
		t.Fatalf("period %d-%d: %v", year, month, err)
	}
	return p
}

func customer(id, energyTariff string) billing.Customer {
	return billing.Customer{
		ID:           id,
		Name:         "Muster",
		Street:       "Teststrasse 0",
		Postcode:     "12345",
		City:         "Teststadt",
		BaseTariff:   dec("140"),
		EnergyTariff: dec(energyTariff),
	}
}

// =============================================================================
// FIXTURE SERIES
// =============================================================================

// Readings on both sides of March, two of them inside March.
func marchWithTwoReadings() []billing.MeterReading {
	return []billing.MeterReading{
		reading("12345", date(2021, time.February, 8), "250"),
		reading("12345", date(2021, time.March, 2), "250"),
		reading("12345", date(2021, time.March, 30), "100"),
		reading("12345", date(2021, time.April, 27), "150"),
	}
}

// One interior reading in February.
func februaryInterior() []billing.MeterReading {
	return []billing.MeterReading{
		reading("6789", date(2021, time.January, 2), "5000"),
		reading("6789", date(2021, time.February, 6), "9052"),
		reading("6789", date(2021, time.March, 18), "16562"),
	}
}

// No reading at all in March.
func marchSkipped() []billing.MeterReading {
	return []billing.MeterReading{
		reading("9876", date(2021, time.January, 28), "3000"),
		reading("9876", date(2021, time.February, 25), "4000"),
		reading("9876", date(2021, time.April, 4), "5273"),
	}
}

// No reading in June, several interior shares around it.
func juneSkipped() []billing.MeterReading {
	return []billing.MeterReading{
		reading("4567", date(2021, time.February, 10), "100"),
		reading("4567", date(2021, time.March, 15), "200"),
		reading("4567", date(2021, time.May, 26), "300"),
		reading("4567", date(2021, time.July, 2), "400"),
		reading("4567", date(2021, time.August, 10), "500"),
	}
}

func series(readings []billing.MeterReading) billing.ReadingSeries {
	return billing.NewReadingSeries(readings, readings[0].CustomerID, readings[0].Date.Year())
}
