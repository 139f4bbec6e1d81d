package account

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsValidAccountType(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"checking", true},
		{"savings", true},
		{"credit", true},
		{"investment", true},
		{"cash", true},
		{"other", true},
		{"CHECKING", false},
		{"BANK", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidAccountType(tt.input); got != tt.want {
				t.Errorf("IsValidAccountType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypes_ReturnsCopy(t *testing.T) {
	types := Types()
	if len(types) != 6 {
		t.Fatalf("Types() returned %d entries, want 6", len(types))
	}
	types[0].Name = "mutated"
	if Types()[0].Name != "Checking Account" {
		t.Error("Types() exposes the internal slice")
	}
}

func TestSummarize(t *testing.T) {
	accounts := []*Account{
		{Balance: decimal.RequireFromString("1500.50")},
		{Balance: decimal.RequireFromString("-300.25")},
		{Balance: decimal.Zero},
		{Balance: decimal.RequireFromString("99.50")},
	}

	s := Summarize(accounts)

	if s.TotalAccounts != 4 {
		t.Errorf("TotalAccounts = %d, want 4", s.TotalAccounts)
	}
	if !s.TotalAssets.Equal(decimal.RequireFromString("1600")) {
		t.Errorf("TotalAssets = %s, want 1600", s.TotalAssets)
	}
	if !s.TotalLiabilities.Equal(decimal.RequireFromString("300.25")) {
		t.Errorf("TotalLiabilities = %s, want 300.25", s.TotalLiabilities)
	}
	if !s.NetWorth.Equal(decimal.RequireFromString("1299.75")) {
		t.Errorf("NetWorth = %s, want 1299.75", s.NetWorth)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalAccounts != 0 || !s.NetWorth.IsZero() {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}
