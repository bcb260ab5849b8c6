package valueobject

import "github.com/shopspring/decimal"

// DisplayPlaces is the number of decimal places used when presenting amounts
const DisplayPlaces int32 = 2

// FormatBRL formats a decimal amount with the real prefix and two fixed places,
// e.g. "R$ 25.00". Rounding is half away from zero.
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(DisplayPlaces)
}

// Percentage returns part / whole × 100 rounded to places; zero when whole is zero
func Percentage(part, whole decimal.Decimal, places int32) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(places)
}
