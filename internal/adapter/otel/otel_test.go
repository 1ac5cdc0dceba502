package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Strob0t/TaskScheduler/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTEL{Enabled: false})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewMetricsRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter(meterName))
	if err != nil {
		t.Fatalf("newMetrics: %v", err)
	}
	ctx := context.Background()
	m.TasksCreated.Add(ctx, 2)
	m.PendingPolls.Add(ctx, 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					got[md.Name] += dp.Value
				}
			}
		}
	}
	if got["taskscheduler.tasks.created"] != 2 {
		t.Errorf("created = %d, want 2", got["taskscheduler.tasks.created"])
	}
	if got["taskscheduler.tasks.pending_polls"] != 1 {
		t.Errorf("pending_polls = %d, want 1", got["taskscheduler.tasks.pending_polls"])
	}
}

func TestEndSpanRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer(tracerName).Start(context.Background(), "task.create")
	EndSpan(span, errors.New("boom"))

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	if ended[0].Status().Description != "boom" {
		t.Errorf("status = %q, want boom", ended[0].Status().Description)
	}
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMiddleware("test")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", http.NoBody))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
}
