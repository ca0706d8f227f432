package domain

import "github.com/shopspring/decimal"

// Decimal places used when rewriting provider monetary values.
const (
	RatePlaces    int32 = 4 // per-unit service rates
	BalancePlaces int32 = 2 // account balances and amounts
)

// Convert applies an exchange rate and a percentage fee buffer to a raw
// provider value: value * rate * (1 + buffer/100), rounded to places.
// It is a pure function; identical inputs always produce identical output.
func Convert(value, rate decimal.Decimal, feeBufferPercent float64, places int32) decimal.Decimal {
	multiplier := decimal.NewFromInt(1).Add(
		decimal.NewFromFloat(feeBufferPercent).Div(decimal.NewFromInt(100)),
	)
	return value.Mul(rate).Mul(multiplier).Round(places)
}

// ConvertString converts a raw string value and renders it with a fixed
// number of decimals, matching the wire format providers expect.
func ConvertString(raw string, rate decimal.Decimal, feeBufferPercent float64, places int32) (string, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}
	return Convert(v, rate, feeBufferPercent, places).StringFixed(places), nil
}
