package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"matatucore/internal/core"
)

func TestRunRequiresSaccoFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "-sacco is required") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunRejectsInvalidPeriod(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sacco", "1", "-start", "yesterday"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if code := run([]string{"-sacco", "1", "-start", "2024-03-02", "-end", "2024-03-01"}, &stdout, &stderr); code != 2 {
		t.Fatalf("inverted period exit code = %d, want 2", code)
	}
}

func TestRunUnknownSacco(t *testing.T) {
	t.Setenv("MATATUCORE_STORAGE_DRIVER", "memory")
	t.Setenv("MATATUCORE_BLOB_DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sacco", "7"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1\nstderr: %s", code, stderr.String())
	}
}

func TestRunGeneratesReportFromSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.db")

	store, err := core.NewSQLiteStore(path, core.NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	svc := core.NewService(store)
	ctx := context.Background()
	sacco, _, err := svc.CreateSacco(ctx, core.CreateSaccoPayload{Name: "Uhuru Shuttle", Location: "Nairobi"})
	if err != nil {
		t.Fatalf("create sacco: %v", err)
	}
	if _, _, err := svc.RecordRevenue(ctx, core.RecordRevenuePayload{SaccoID: sacco.ID, Description: "fares", Amount: 1200}); err != nil {
		t.Fatalf("record revenue: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close sqlite: %v", err)
	}

	t.Setenv("MATATUCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("MATATUCORE_SQLITE_PATH", path)
	t.Setenv("MATATUCORE_BLOB_DRIVER", "memory")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sacco", "1"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr.String())
	}
	var report core.FinancialReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SaccoID != sacco.ID || report.TotalRevenue != 1200 {
		t.Fatalf("report = %+v, want sacco %d revenue 1200", report, sacco.ID)
	}
}
