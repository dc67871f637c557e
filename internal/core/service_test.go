package core

import (
	"context"
	"testing"
	"time"

	blobmem "matatucore/internal/infra/blob/memory"
	"matatucore/pkg/domain"
)

// TestFleetDayLifecycle drives a full operating day through the service:
// registration, assignment, trips, ledger entries, feedback, scheduling,
// telemetry, and the closing financial report.
func TestFleetDayLifecycle(t *testing.T) {
	archive := blobmem.New()
	svc, mem := newTestService(t, WithReportArchive(archive))
	ctx := context.Background()

	sacco, matatu, driver := seedFleet(t, svc)
	if _, _, err := svc.AssignDriverToMatatu(ctx, driver.ID, matatu.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	route, _, err := svc.CreateRoute(ctx, testRoutePayload(nil, []TimeWindow{{StartHour: 6, EndHour: 9, DayOfWeek: 1}}))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	// Morning trip with revenue and a passenger rating.
	trip, _, err := svc.StartTrip(ctx, StartTripPayload{MatatuID: matatu.ID, DriverID: driver.ID, Route: route.Name})
	if err != nil {
		t.Fatalf("start trip: %v", err)
	}
	if _, _, err := svc.EndTrip(ctx, trip.ID, 14, 2100); err != nil {
		t.Fatalf("end trip: %v", err)
	}
	if _, _, err := svc.SubmitFeedback(ctx, SubmitFeedbackPayload{
		TripID: trip.ID, Rating: 5, Cleanliness: 4, Punctuality: 5, Safety: 5,
	}); err != nil {
		t.Fatalf("feedback: %v", err)
	}

	// Running costs and the farebox deposit.
	if _, _, err := svc.RecordFuel(ctx, RecordFuelPayload{MatatuID: matatu.ID, Liters: 35, Cost: 6300, OdometerReading: 182400}); err != nil {
		t.Fatalf("fuel: %v", err)
	}
	if _, _, err := svc.RecordExpense(ctx, RecordExpensePayload{SaccoID: sacco.ID, Category: "fuel", Amount: 6300}); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, _, err := svc.RecordRevenue(ctx, RecordRevenuePayload{SaccoID: sacco.ID, MatatuID: matatu.ID, Description: "fares", Amount: 2100}); err != nil {
		t.Fatalf("revenue: %v", err)
	}

	// Tomorrow's schedule plus a telemetry ping.
	batch, _, err := svc.CreateAutomatedSchedule(ctx, sacco.ID, testTime.AddDate(0, 0, 1).Truncate(24*time.Hour))
	if err != nil {
		t.Fatalf("automated schedule: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(batch))
	}
	if _, _, err := svc.UpdateLocation(ctx, UpdateLocationPayload{MatatuID: matatu.ID, Latitude: -1.28, Longitude: 36.82, Speed: 47}); err != nil {
		t.Fatalf("telemetry: %v", err)
	}

	// Close the day.
	report, _, err := svc.GenerateFinancialReport(ctx, sacco.ID, testTime.Add(-time.Hour), testTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalRevenue != 2100 || report.TotalExpenses != 6300 {
		t.Fatalf("report totals = %v/%v", report.TotalRevenue, report.TotalExpenses)
	}
	if report.ProfitMargin >= 0 {
		t.Fatalf("margin = %v, want negative", report.ProfitMargin)
	}
	if infos, err := archive.List(ctx, "reports/"); err != nil || len(infos) != 1 {
		t.Fatalf("archived reports = %d (%v), want 1", len(infos), err)
	}

	// Driver performance accrued the trip and the rating.
	perf, err := svc.GetDriverPerformance(ctx, driver.ID, monthBucket(testTime.Unix()))
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if perf.TripsCompleted != 2 || perf.TotalRevenue != 2105 {
		t.Fatalf("performance = %+v, want 2 trips / 2105 revenue", perf)
	}

	// Vehicle analytics line up with the ledger.
	analytics, err := svc.GetMatatuAnalytics(ctx, matatu.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if analytics.TotalTrips != 1 || analytics.TotalRevenue != 2100 || analytics.FuelCosts != 6300 {
		t.Fatalf("analytics = %+v", analytics)
	}

	// Store-level reads agree with the service results.
	if got, ok := mem.GetTrip(trip.ID); !ok || got.Status != domain.TripStatusCompleted {
		t.Fatalf("trip read-back = %+v (%v)", got, ok)
	}
	if got := len(mem.ListSchedules()); got != 1 {
		t.Fatalf("schedules = %d, want 1", got)
	}
}
