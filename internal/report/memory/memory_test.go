package memory

import (
	"context"
	"testing"

	"payoff/internal/report"
)

func TestExport(t *testing.T) {
	s := New()
	ref, err := s.Export(context.Background(), report.Report{Title: "a"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("Export() = %q, %v", ref, err)
	}
	ref, _ = s.Export(context.Background(), report.Report{Title: "b"})
	if ref != "mem:2" {
		t.Errorf("Export() = %q, want mem:2", ref)
	}
	if got := s.Reports(); len(got) != 2 || got[1].Title != "b" {
		t.Errorf("Reports() = %v", got)
	}
}
