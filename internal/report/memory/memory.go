// Package memory keeps exported reports in process.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"payoff/internal/report"
)

type Sink struct {
	mu      sync.Mutex
	reports []report.Report
}

var _ report.Sink = (*Sink)(nil)

func New() *Sink { return &Sink{} }

func (s *Sink) Export(_ context.Context, r report.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns every report exported so far.
func (s *Sink) Reports() []report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.reports)
}
