package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// BasePrice pro-rates the yearly base tariff to the days of the period.
// Leap years divide by 366.
func BasePrice(baseTariff decimal.Decimal, period BillingPeriod) decimal.Decimal {
	days := decimal.NewFromInt(int64(period.Days()))
	year := decimal.NewFromInt(int64(DaysInYear(period.Year)))
	return RoundCents(baseTariff.Mul(days).Div(year))
}

// EnergyPrice converts consumption to currency. The tariff is in cents per unit.
func EnergyPrice(consumption, energyTariff decimal.Decimal) decimal.Decimal {
	return RoundCents(consumption.Mul(energyTariff).Div(hundred))
}
