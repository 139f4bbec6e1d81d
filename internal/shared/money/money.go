// Package money holds decimal helpers shared by the ledger, budgets and goals.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

var hundred = decimal.NewFromInt(100)

// Currency describes a supported ISO 4217 code.
type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

var currencies = []Currency{
	{"USD", "US Dollar", "$", 2},
	{"EUR", "Euro", "€", 2},
	{"GBP", "British Pound", "£", 2},
	{"JPY", "Japanese Yen", "¥", 0},
	{"BRL", "Brazilian Real", "R$", 2},
	{"CHF", "Swiss Franc", "CHF", 2},
	{"CAD", "Canadian Dollar", "C$", 2},
	{"AUD", "Australian Dollar", "A$", 2},
	{"NZD", "New Zealand Dollar", "NZ$", 2},
	{"CNY", "Chinese Yuan", "¥", 2},
	{"INR", "Indian Rupee", "₹", 2},
	{"MXN", "Mexican Peso", "MX$", 2},
	{"ZAR", "South African Rand", "R", 2},
	{"SEK", "Swedish Krona", "kr", 2},
	{"NOK", "Norwegian Krone", "kr", 2},
	{"DKK", "Danish Krone", "kr", 2},
	{"PLN", "Polish Zloty", "zł", 2},
	{"TRY", "Turkish Lira", "₺", 2},
	{"KRW", "South Korean Won", "₩", 0},
	{"SGD", "Singapore Dollar", "S$", 2},
	{"HKD", "Hong Kong Dollar", "HK$", 2},
	{"ARS", "Argentine Peso", "$", 2},
	{"CLP", "Chilean Peso", "$", 0},
	{"COP", "Colombian Peso", "$", 2},
	{"CZK", "Czech Koruna", "Kč", 2},
	{"HUF", "Hungarian Forint", "Ft", 2},
	{"ILS", "Israeli New Shekel", "₪", 2},
	{"THB", "Thai Baht", "฿", 2},
	{"PHP", "Philippine Peso", "₱", 2},
	{"IDR", "Indonesian Rupiah", "Rp", 0},
}

var currencyIndex = func() map[string]int {
	idx := make(map[string]int, len(currencies))
	for i, c := range currencies {
		idx[c.Code] = i
	}
	return idx
}()

// Currencies returns a copy of the supported currencies.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// LookupCurrency finds a currency by code, ignoring case and surrounding
// space.
func LookupCurrency(code string) (Currency, bool) {
	i, ok := currencyIndex[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, false
	}
	return currencies[i], true
}

// IsValidCurrency reports whether c is a supported upper-case ISO 4217 code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	_, ok := currencyIndex[c]
	return ok
}

// NormalizeCurrency upper-cases the code and falls back to DefaultCurrency
// when it is empty.
func NormalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// Percent returns part/whole*100 rounded to two places, or zero when whole is
// not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// Reached reports whether part is at least percent% of whole, compared
// without rounding.
func Reached(part, whole decimal.Decimal, percent int64) bool {
	if !whole.IsPositive() {
		return false
	}
	return part.Mul(hundred).GreaterThanOrEqual(whole.Mul(decimal.NewFromInt(percent)))
}

// PercentInt is the unrounded percentage truncated to an int and capped at max.
func PercentInt(part, whole decimal.Decimal, max int64) int64 {
	if !whole.IsPositive() {
		return 0
	}
	p := part.Mul(hundred).Div(whole).IntPart()
	if p > max {
		return max
	}
	if p < 0 {
		return 0
	}
	return p
}

// Cap returns d clamped to at most limit.
func Cap(d, limit decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(limit) {
		return limit
	}
	return d
}

// NonNegative returns d or zero if d is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
