package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("USD"))
	assert.True(t, IsValidCurrency("EUR"))
	assert.False(t, IsValidCurrency("usd"))
	assert.False(t, IsValidCurrency("XXX"))
	assert.False(t, IsValidCurrency("DOLLAR"))
}

func TestLookupCurrency(t *testing.T) {
	c, ok := LookupCurrency(" jpy ")
	assert.True(t, ok)
	assert.Equal(t, Currency{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Decimals: 0}, c)

	_, ok = LookupCurrency("XXX")
	assert.False(t, ok)
}

func TestCurrencies(t *testing.T) {
	list := Currencies()
	assert.Equal(t, "USD", list[0].Code)

	seen := map[string]bool{}
	for _, c := range list {
		assert.False(t, seen[c.Code], "duplicate %s", c.Code)
		seen[c.Code] = true
		assert.True(t, IsValidCurrency(c.Code))
		assert.NotEmpty(t, c.Name)
	}

	list[0].Code = "ZZZ"
	assert.Equal(t, "USD", Currencies()[0].Code, "callers get a copy")
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(""))
	assert.Equal(t, "EUR", NormalizeCurrency(" eur "))
}

func TestPercent(t *testing.T) {
	assert.True(t, d("75").Equal(Percent(d("75"), d("100"))))
	assert.True(t, d("33.33").Equal(Percent(d("1"), d("3"))))
	assert.True(t, decimal.Zero.Equal(Percent(d("10"), decimal.Zero)))
}

func TestPercentInt(t *testing.T) {
	assert.Equal(t, int64(100), PercentInt(d("250"), d("100"), 100))
	assert.Equal(t, int64(89), PercentInt(d("89.99"), d("100"), 100))
	assert.Equal(t, int64(0), PercentInt(d("-5"), d("100"), 100))
	assert.Equal(t, int64(99), PercentInt(d("99996"), d("100000"), 100))
	assert.Equal(t, int64(0), PercentInt(d("5"), decimal.Zero, 100))
}

func TestReached(t *testing.T) {
	tests := []struct {
		part, whole string
		percent     int64
		want        bool
	}{
		{"100", "100", 100, true},
		{"99996", "100000", 100, false},
		{"99999.99", "100000", 100, false},
		{"100000.01", "100000", 100, true},
		{"89.999", "100", 90, false},
		{"90", "100", 90, true},
		{"10", "0", 50, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Reached(d(tt.part), d(tt.whole), tt.percent), "%s/%s >= %d%%", tt.part, tt.whole, tt.percent)
	}
}

func TestCapAndNonNegative(t *testing.T) {
	assert.True(t, d("100").Equal(Cap(d("120"), d("100"))))
	assert.True(t, d("80").Equal(Cap(d("80"), d("100"))))
	assert.True(t, decimal.Zero.Equal(NonNegative(d("-1"))))
}
