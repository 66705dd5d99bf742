package report

import "context"

// Sink is the outbound port for finished reports.
type Sink interface {
	// Export writes r and returns a reference to where it was written.
	Export(ctx context.Context, r Report) (ref string, err error)
}

// Report is a rendered table: a header, one row per month, and a short
// key/value summary placed above the table.
type Report struct {
	Title   string     `json:"title"`
	Summary [][]string `json:"summary"`
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
}
