package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"payoff/internal/amqp"
	"payoff/internal/budget"
	"payoff/internal/core"
	"payoff/internal/projection"
	"payoff/internal/services"
)

// Exporter replays a queued projection and writes its report.
type Exporter interface {
	Export(ctx context.Context, req amqp.ExportRequest) (string, error)
}

// ExportWorker handles export requests delivered over AMQP.
type ExportWorker struct {
	exporter Exporter
}

func NewExportWorker(exporter Exporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleExport processes one request. Requests that can never succeed are
// logged and dropped; any other failure is returned so the message is
// redelivered.
func (w *ExportWorker) HandleExport(ctx context.Context, req amqp.ExportRequest) error {
	slog.InfoContext(ctx, "Processing export request",
		"run_id", req.RunID,
		"owner_id", req.OwnerID,
		"strategy", req.Strategy)

	ref, err := w.exporter.Export(ctx, req)
	if err != nil {
		if permanent(err) {
			slog.WarnContext(ctx, "Dropping export request",
				"run_id", req.RunID,
				"owner_id", req.OwnerID,
				"error", err)
			return nil
		}
		return fmt.Errorf("export run %s: %w", req.RunID, err)
	}

	slog.InfoContext(ctx, "Successfully exported projection",
		"run_id", req.RunID,
		"report_ref", ref)
	return nil
}

// permanent reports whether err depends only on the request and the owner's
// data, so retrying cannot help.
func permanent(err error) bool {
	for _, target := range []error{
		projection.ErrHorizonExceeded,
		budget.ErrNoDebts,
		budget.ErrNoIncome,
		budget.ErrNoExtraPower,
		core.ErrInvalidStrategy,
		services.ErrExportUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
