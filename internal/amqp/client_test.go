package amqp

import (
	"testing"
	"time"

	"payoff/internal/core"
)

func TestExportRequest_JSON(t *testing.T) {
	req := &ExportRequest{
		RunID:       "run-1",
		OwnerID:     42,
		Strategy:    core.StrategySnowball,
		Start:       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		RequestedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}

	data, err := req.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := ExportRequestFromJSON(data)
	if err != nil {
		t.Fatalf("ExportRequestFromJSON() error = %v", err)
	}
	if got.RunID != req.RunID || got.OwnerID != req.OwnerID || got.Strategy != req.Strategy ||
		!got.Start.Equal(req.Start) || !got.RequestedAt.Equal(req.RequestedAt) {
		t.Errorf("round trip = %+v, want %+v", got, req)
	}
}

func TestExportRequest_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing run id", `{"owner_id":1,"strategy":"avalanche"}`},
		{"missing owner", `{"run_id":"x","strategy":"avalanche"}`},
		{"bad strategy", `{"run_id":"x","owner_id":1,"strategy":"fastest"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExportRequestFromJSON([]byte(tt.data)); err == nil {
				t.Error("ExportRequestFromJSON() error = nil, want error")
			}
		})
	}
}
