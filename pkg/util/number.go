package util

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Round2 rounds x to two decimal places, half away from zero.
// The float is read through its shortest decimal representation, so 1.005 rounds to 1.01.
// NaN and infinities are returned unchanged.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// FormatMoney renders amount in the given ISO currency, e.g. "$1.25" for USD.
// Unknown currency codes are rendered as "<amount> <code>".
func FormatMoney(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + code
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}
