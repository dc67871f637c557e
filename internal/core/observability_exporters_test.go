package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "create_sacco", true, 10*time.Millisecond)
	rec.Observe(ctx, "create_sacco", true, 5*time.Millisecond)
	rec.Observe(ctx, "create_sacco", false, 2*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if snap.DurationsMS["create_sacco"] != 17 {
		t.Fatalf("durations = %v, want 17ms total", snap.DurationsMS["create_sacco"])
	}
	counts := snap.Results["create_sacco"]
	if counts["success"] != 2 || counts["error"] != 1 {
		t.Fatalf("result counts = %v", counts)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatal("empty operation must be ignored")
	}
}

func TestExpvarMetricsRecorderUniqueNames(t *testing.T) {
	a := NewExpvarMetricsRecorder("")
	b := NewExpvarMetricsRecorder("")
	if a.Name() == b.Name() {
		t.Fatalf("expected unique generated names, both %q", a.Name())
	}
	if !strings.HasPrefix(a.Name(), "fleet_service_metrics_") {
		t.Fatalf("unexpected name %q", a.Name())
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	ctx := context.Background()

	_, span := tracer.Start(ctx, "end_trip")
	span.End(nil)
	_, span = tracer.Start(ctx, "end_trip")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	dec := json.NewDecoder(&buf)
	var first JSONTraceEntry
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decode first line: %v", err)
	}
	if first.Operation != "end_trip" || first.Status != "success" {
		t.Fatalf("first line = %+v", first)
	}
}

func TestJSONTracerNilWriter(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "create_route")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatalf("entries = %d, want 1", len(tracer.Entries()))
	}
}
