package core

import (
	"context"
	"testing"
	"time"

	"matatucore/internal/infra/persistence/memory"
)

var testTime = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

// newTestService builds an in-memory service with the default rule set and a
// pinned transaction clock.
func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	svc := NewInMemoryService(NewDefaultRulesEngine(), opts...)
	mem, ok := svc.Store().(*memory.Store)
	if !ok {
		t.Fatalf("expected in-memory store, got %T", svc.Store())
	}
	mem.SetNowFunc(func() time.Time { return testTime })
	return svc, mem
}

// seedFleet registers one cooperative with one vehicle and one driver.
func seedFleet(t *testing.T, svc *Service) (Sacco, Matatu, Driver) {
	t.Helper()
	ctx := context.Background()
	sacco, _, err := svc.CreateSacco(ctx, CreateSaccoPayload{Name: "Uhuru Shuttle", Location: "Nairobi"})
	if err != nil {
		t.Fatalf("create sacco: %v", err)
	}
	matatu, _, err := svc.RegisterMatatu(ctx, RegisterMatatuPayload{
		SaccoID:     sacco.ID,
		PlateNumber: "KDA 123X",
		Capacity:    14,
		Route:       "CBD-Rongai",
	})
	if err != nil {
		t.Fatalf("register matatu: %v", err)
	}
	driver, _, err := svc.RegisterDriver(ctx, RegisterDriverPayload{
		SaccoID:       sacco.ID,
		Name:          "J. Mwangi",
		LicenseNumber: "DL-44821",
	})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	return sacco, matatu, driver
}
