// Command fleet-report generates a SACCO financial report from the configured
// persistent store and prints it as JSON. Storage and archive backends are
// selected through the MATATUCORE_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"matatucore/internal/core"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fleet-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	saccoID := fs.Uint64("sacco", 0, "identifier of the SACCO to report on (required)")
	startArg := fs.String("start", "", "period start, RFC 3339 or YYYY-MM-DD (default 30 days ago)")
	endArg := fs.String("end", "", "period end, RFC 3339 or YYYY-MM-DD (default now)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *saccoID == 0 {
		fmt.Fprintln(stderr, "fleet-report: -sacco is required")
		fs.Usage()
		return 2
	}

	now := time.Now().UTC()
	start, err := parsePeriod(*startArg, now.AddDate(0, 0, -30))
	if err != nil {
		fmt.Fprintf(stderr, "fleet-report: invalid -start: %v\n", err)
		return 2
	}
	end, err := parsePeriod(*endArg, now)
	if err != nil {
		fmt.Fprintf(stderr, "fleet-report: invalid -end: %v\n", err)
		return 2
	}
	if end.Before(start) {
		fmt.Fprintln(stderr, "fleet-report: -end precedes -start")
		return 2
	}

	ctx := context.Background()
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		fmt.Fprintf(stderr, "fleet-report: open store: %v\n", err)
		return 1
	}
	archive, err := core.OpenReportArchive(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "fleet-report: open archive: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := core.NewService(store,
		core.WithLogger(core.NewSlogLogger(logger)),
		core.WithReportArchive(archive),
	)

	report, _, err := svc.GenerateFinancialReport(ctx, core.ID(*saccoID), start, end)
	if err != nil {
		fmt.Fprintf(stderr, "fleet-report: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "fleet-report: encode report: %v\n", err)
		return 1
	}
	return 0
}

// parsePeriod accepts RFC 3339 timestamps or bare dates. An empty value falls
// back to the supplied default.
func parsePeriod(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}
