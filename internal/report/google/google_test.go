package google

import (
	"context"
	"strings"
	"testing"

	"payoff/internal/report"
)

func TestSheetTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Avalanche plan", "Avalanche plan"},
		{"  bob's plan! ", "bobs plan"},
		{"[2026]", "(2026)"},
		{"", "Payoff plan"},
	}
	for _, tt := range tests {
		if got := sheetTitle(tt.in); got != tt.want {
			t.Errorf("sheetTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := sheetTitle(strings.Repeat("x", 150)); len(got) != maxTitleLength {
		t.Errorf("len(sheetTitle(long)) = %d, want %d", len(got), maxTitleLength)
	}
}

func TestValuesLayout(t *testing.T) {
	r := report.Report{
		Summary: [][]string{{"Months to freedom", "3"}},
		Header:  []string{"Month", "Date"},
		Rows:    [][]string{{"1", "May 2026"}, {"2", "June 2026"}},
	}
	got := values(r)
	if len(got) != 5 {
		t.Fatalf("len(values) = %d, want 5", len(got))
	}
	if len(got[1]) != 0 {
		t.Errorf("row 1 = %v, want blank separator", got[1])
	}
	if got[2][0] != "Month" || got[4][1] != "June 2026" {
		t.Errorf("values = %v", got)
	}
}

func TestNewSinkRequiresSpreadsheet(t *testing.T) {
	if _, err := NewSink(context.Background(), " ", Credentials{}); err == nil {
		t.Fatal("NewSink() with empty id succeeded")
	}
}
