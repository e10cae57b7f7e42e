package money

import "github.com/shopspring/decimal"

// Monetary amounts carry 2 fractional digits; the overhead ratio keeps 4.
const (
	AmountPlaces  = 2
	PercentPlaces = 4
)

var (
	oneHalf = decimal.New(5, -1)
	hundred = decimal.NewFromInt(100)
)

// RoundHalfUp rounds d to the given number of decimal places with ties going
// up (0.125 -> 0.13 at 2 places). decimal.Decimal's own Round is
// half-away-from-zero, so the mode is spelled out here as floor(x*10^p + 0.5).
// The floor form sends negative ties toward positive infinity (-2.345 ->
// -2.34); the amounts flowing through here are non-negative, so the
// difference never surfaces.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(oneHalf).Floor().Shift(-places)
}

// RoundAmount rounds to 2 decimal places, half up.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return RoundHalfUp(d, AmountPlaces)
}

// ApplyPercent returns base × pct / 100 rounded to 2 decimal places, half up.
func ApplyPercent(base, pct decimal.Decimal) decimal.Decimal {
	return RoundAmount(base.Mul(pct).Div(hundred))
}

// Ratio returns part / whole × 100 rounded to 4 decimal places, or zero
// when whole is not positive. Division by zero is a domain case (no sales in
// a period), not an error.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, PercentPlaces)
}
