// Package google exports reports to a Google Sheets spreadsheet, one tab per
// report.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"payoff/internal/report"
)

const maxTitleLength = 100

type Sink struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ report.Sink = (*Sink)(nil)

// Credentials selects the service account used to reach the Sheets API.
// JSON takes precedence over File; with neither set,
// GOOGLE_APPLICATION_CREDENTIALS is consulted.
type Credentials struct {
	JSON string
	File string
}

func NewSink(ctx context.Context, spreadsheetID string, creds Credentials) (*Sink, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	jsonCreds := strings.TrimSpace(creds.JSON)
	file := strings.TrimSpace(creds.File)
	if jsonCreds == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var raw []byte
	switch {
	case jsonCreds != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		raw = []byte(jsonCreds)
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// sheetTitle trims characters the A1 notation cannot carry unquoted.
func sheetTitle(title string) string {
	title = strings.NewReplacer("'", "", "!", "", "[", "(", "]", ")").Replace(strings.TrimSpace(title))
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	if title == "" {
		title = "Payoff plan"
	}
	return title
}

// values flattens the report into rows: summary, a blank line, then the table.
func values(r report.Report) [][]any {
	out := make([][]any, 0, len(r.Summary)+len(r.Rows)+2)
	for _, kv := range r.Summary {
		out = append(out, toRow(kv))
	}
	if len(r.Summary) > 0 {
		out = append(out, []any{})
	}
	out = append(out, toRow(r.Header))
	for _, row := range r.Rows {
		out = append(out, toRow(row))
	}
	return out
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// Export adds a new tab named after the report and writes it from A1.
func (s *Sink) Export(ctx context.Context, r report.Report) (string, error) {
	title := sheetTitle(r.Title)

	resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("add sheet %q: %w", title, err)
	}

	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	vr := &gsheet.ValueRange{Values: values(r)}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, fmt.Sprintf("'%s'!A1", title), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write sheet %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"sheet", title,
		"rows", len(r.Rows))
	return fmt.Sprintf("%s#gid=%d", s.spreadsheetID, sheetID), nil
}
