package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"matatucore/pkg/domain"
)

func seedSacco(t *testing.T, store *Store) Sacco {
	t.Helper()
	var sacco Sacco
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateSacco(Sacco{Name: "Nairobi Express", Location: "Nairobi", Contact: "0700000000", Email: "ops@nbx.co.ke"})
		if err != nil {
			return err
		}
		sacco = created
		return nil
	}); err != nil {
		t.Fatalf("seed sacco: %v", err)
	}
	return sacco
}

func TestIdentifierSequencePostIncrement(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)
	if sacco.ID != 1 {
		t.Fatalf("expected first identifier 1, got %d", sacco.ID)
	}

	var matatu Matatu
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateMatatu(Matatu{SaccoID: sacco.ID, PlateNumber: "KDA 123X", Capacity: 14, Route: "CBD-Rongai", Status: domain.MatatuStatusActive})
		if err != nil {
			return err
		}
		matatu = created
		return nil
	}); err != nil {
		t.Fatalf("create matatu: %v", err)
	}
	if matatu.ID != 2 {
		t.Fatalf("expected shared sequence to issue 2, got %d", matatu.ID)
	}
}

func TestFailedTransactionLeavesIdentifierGap(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)

	boom := errors.New("boom")
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateDriver(Driver{SaccoID: sacco.ID, Name: "Otieno", LicenseNumber: "DL-1", Contact: "0711"}); err != nil {
			return err
		}
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	if got := store.ListDrivers(); len(got) != 0 {
		t.Fatalf("rolled back transaction left %d drivers", len(got))
	}

	var driver Driver
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateDriver(Driver{SaccoID: sacco.ID, Name: "Wanjiku", LicenseNumber: "DL-2", Contact: "0722"})
		if err != nil {
			return err
		}
		driver = created
		return nil
	}); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	if driver.ID != 3 {
		t.Fatalf("expected identifier gap (got %d, want 3): allocations must survive rollback", driver.ID)
	}
}

func TestCreateMatatuRequiresSacco(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateMatatu(Matatu{SaccoID: 99, PlateNumber: "KDB 001A", Capacity: 14, Status: domain.MatatuStatusActive})
		return err
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Entity != domain.EntitySacco || nf.ID != 99 {
		t.Fatalf("unexpected missing reference: %+v", nf)
	}
}

func TestCreateTripNamesMissingEntity(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)

	var matatu Matatu
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateMatatu(Matatu{SaccoID: sacco.ID, PlateNumber: "KDC 500B", Capacity: 33, Status: domain.MatatuStatusActive})
		if err != nil {
			return err
		}
		matatu = created
		return nil
	}); err != nil {
		t.Fatalf("create matatu: %v", err)
	}

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateTrip(Trip{MatatuID: matatu.ID, DriverID: 404, Status: domain.TripStatusOngoing})
		return err
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Entity != domain.EntityDriver {
		t.Fatalf("expected missing driver, got %s", nf.Entity)
	}
}

func TestRecordSizeCeilingRejectsOversizedRecord(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateSacco(Sacco{Name: strings.Repeat("x", 600), Location: "Nairobi"})
		return err
	})
	var se domain.SizeExceededError
	if !errors.As(err, &se) {
		t.Fatalf("expected SizeExceededError, got %v", err)
	}
	if se.Limit != domain.MaxRecordBytes {
		t.Fatalf("unexpected limit %d", se.Limit)
	}
	if got := store.ListSaccos(); len(got) != 0 {
		t.Fatalf("oversized record was committed")
	}
}

func TestUpdatePreservesIdentityAndCreationTime(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })

	sacco := seedSacco(t, store)
	var driver Driver
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateDriver(Driver{SaccoID: sacco.ID, Name: "Mutua", LicenseNumber: "DL-9", Contact: "0733"})
		if err != nil {
			return err
		}
		driver = created
		return nil
	}); err != nil {
		t.Fatalf("create driver: %v", err)
	}

	store.SetNowFunc(func() time.Time { return fixed.Add(48 * time.Hour) })
	matatuID := ID(7)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateDriver(driver.ID, func(d *Driver) error {
			d.ID = 999
			d.AssignedMatatu = &matatuID
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update driver: %v", err)
	}

	got, ok := store.GetDriver(driver.ID)
	if !ok {
		t.Fatalf("driver vanished after update")
	}
	if got.ID != driver.ID {
		t.Fatalf("mutator overrode identity: %d", got.ID)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Fatalf("update rewrote CreatedAt: %v", got.CreatedAt)
	}
	if got.AssignedMatatu == nil || *got.AssignedMatatu != matatuID {
		t.Fatalf("assignment not persisted: %+v", got.AssignedMatatu)
	}
}

func TestListOrderingAscending(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)
	plates := []string{"KDA 1", "KDA 2", "KDA 3"}
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		for _, plate := range plates {
			if _, err := tx.CreateMatatu(Matatu{SaccoID: sacco.ID, PlateNumber: plate, Capacity: 14, Status: domain.MatatuStatusActive}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed matatus: %v", err)
	}

	got := store.ListMatatus()
	if len(got) != len(plates) {
		t.Fatalf("expected %d matatus, got %d", len(plates), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("listing not in ascending key order: %d before %d", got[i-1].ID, got[i].ID)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateMatatu(Matatu{SaccoID: sacco.ID, PlateNumber: "KDD 8", Capacity: 14, Status: domain.MatatuStatusActive}); err != nil {
			return err
		}
		_, err := tx.CreateRoute(Route{Name: "CBD-Rongai", StartPoint: "CBD", EndPoint: "Rongai", Distance: 22.5, EstimatedTime: 45, Price: 100})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if len(restored.ListSaccos()) != 1 || len(restored.ListMatatus()) != 1 || len(restored.ListRoutes()) != 1 {
		t.Fatalf("restored store missing entities")
	}

	var driver Driver
	if _, err := restored.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateDriver(Driver{SaccoID: sacco.ID, Name: "Achieng", LicenseNumber: "DL-4", Contact: "0744"})
		if err != nil {
			return err
		}
		driver = created
		return nil
	}); err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if driver.ID != 4 {
		t.Fatalf("restored sequence re-issued identifiers: got %d", driver.ID)
	}
}

func TestMigrateSnapshotAdvancesSequencePastHighestKey(t *testing.T) {
	snapshot := Snapshot{
		NextID: 1,
		Saccos: map[ID]Sacco{1: {Base: domain.Base{ID: 1}, Name: "A"}},
		Trips:  map[ID]Trip{40: {Base: domain.Base{ID: 40}, Status: domain.TripStatusCompleted}},
	}
	store := NewStore(nil)
	store.ImportState(snapshot)

	var route Route
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		created, err := tx.CreateRoute(Route{Name: "Thika Rd", StartPoint: "CBD", EndPoint: "Thika", Distance: 40, EstimatedTime: 60})
		if err != nil {
			return err
		}
		route = created
		return nil
	}); err != nil {
		t.Fatalf("create route: %v", err)
	}
	if route.ID != 41 {
		t.Fatalf("sequence not advanced past restored keys: got %d", route.ID)
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, change := range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "block_everything",
			Severity: domain.SeverityBlock,
			Message:  "no writes allowed",
			Entity:   change.Entity,
		})
	}
	return res, nil
}

func TestBlockingRulePreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateSacco(Sacco{Name: "Blocked"})
		return err
	})
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking violations in result")
	}
	if len(store.ListSaccos()) != 0 {
		t.Fatalf("blocked transaction committed state")
	}
}

func TestViewSeesSnapshotNotLiveState(t *testing.T) {
	store := NewStore(nil)
	sacco := seedSacco(t, store)

	if err := store.View(context.Background(), func(view TransactionView) error {
		saccos := view.ListSaccos()
		if len(saccos) != 1 || saccos[0].ID != sacco.ID {
			t.Fatalf("view missing seeded sacco: %+v", saccos)
		}
		if _, ok := view.FindSacco(sacco.ID); !ok {
			t.Fatalf("FindSacco missed seeded sacco")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
