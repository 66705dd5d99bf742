package report

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payoff/internal/budget"
	"payoff/internal/core"
	"payoff/internal/projection"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0.00"},
		{"12.5", "12.50"},
		{"1234567.891", "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(27); got != "2 years 3 months" {
		t.Errorf("FormatDuration(27) = %q", got)
	}
}

func TestBuildReport(t *testing.T) {
	res, err := projection.Run(projection.Input{
		Debts: []core.Debt{
			{ID: 1, Name: "Small", Kind: core.DebtAmortizingLoan, Balance: decimal.NewFromInt(200), MinPayment: decimal.NewFromInt(100)},
			{ID: 2, Name: "Large", Kind: core.DebtAmortizingLoan, Balance: decimal.NewFromInt(1000), MinPayment: decimal.NewFromInt(100)},
		},
		Strategy:   core.StrategySnowball,
		ExtraPower: decimal.NewFromInt(100),
		Start:      time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	r := BuildReport("plan", res, budget.Analysis{})
	want := []string{"Month", "Date", "Small", "Large", "Total Remaining", "Extra Pool", "Savings"}
	if !slices.Equal(r.Header, want) {
		t.Fatalf("Header = %v, want %v", r.Header, want)
	}
	if len(r.Rows) != res.MonthsToFreedom {
		t.Fatalf("len(Rows) = %d, want %d", len(r.Rows), res.MonthsToFreedom)
	}
	first := r.Rows[0]
	if first[1] != "February 2026" || first[2] != PaidMarker || first[3] != "900.00" {
		t.Errorf("first row = %v", first)
	}
	if last := r.Rows[len(r.Rows)-1]; last[3] != PaidMarker || last[4] != "0.00" {
		t.Errorf("last row = %v", last)
	}
}
