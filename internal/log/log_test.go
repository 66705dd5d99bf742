package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Component: "test", Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentAuth)
	l.Info("hello", "k", "v")

	out := buf.String()
	if !strings.Contains(out, "component=auth") || !strings.Contains(out, "k=v") {
		t.Errorf("log output = %q", out)
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("FromContext(empty).Component() = %q, want unknown", got.Component())
	}

	var buf bytes.Buffer
	l := newBufferLogger(&buf)
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("log output = %q, want request id", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogProjection(context.Background(), 7, NewFields().WithProjection("run", "avalanche", 18, decimal.RequireFromString("10.5")))
	sl.LogError(context.Background(), "failed", errors.New("boom"), ComponentWorker, OpExport, nil)

	out := buf.String()
	for _, want := range []string{"owner_id=7", "months=18", "total_interest=10.50", "error=boom", "operation=export"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
