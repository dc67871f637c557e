// Package memory provides the canonical in-memory implementation of the core
// persistence store. Durable backends wrap it and persist snapshots.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"matatucore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// ID aliases domain.ID for in-memory persistence operations.
	ID = domain.ID
	// Sacco aliases domain.Sacco.
	Sacco = domain.Sacco
	// Matatu aliases domain.Matatu.
	Matatu = domain.Matatu
	// Driver aliases domain.Driver.
	Driver = domain.Driver
	// Trip aliases domain.Trip.
	Trip = domain.Trip
	// Maintenance aliases domain.Maintenance.
	Maintenance = domain.Maintenance
	// DriverPerformance aliases domain.DriverPerformance.
	DriverPerformance = domain.DriverPerformance
	// Expense aliases domain.Expense.
	Expense = domain.Expense
	// Revenue aliases domain.Revenue.
	Revenue = domain.Revenue
	// FuelConsumption aliases domain.FuelConsumption.
	FuelConsumption = domain.FuelConsumption
	// Route aliases domain.Route.
	Route = domain.Route
	// CustomerFeedback aliases domain.CustomerFeedback.
	CustomerFeedback = domain.CustomerFeedback
	// Schedule aliases domain.Schedule.
	Schedule = domain.Schedule
	// LocationUpdate aliases domain.LocationUpdate.
	LocationUpdate = domain.LocationUpdate
	// FinancialReport aliases domain.FinancialReport.
	FinancialReport = domain.FinancialReport
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

// fleetState holds one keyed table per entity type. Each table is an isolated
// region: an oversized record rejected in one table cannot affect another's
// iteration.
type fleetState struct {
	saccos       map[ID]Sacco
	matatus      map[ID]Matatu
	drivers      map[ID]Driver
	trips        map[ID]Trip
	maintenance  map[ID]Maintenance
	performance  map[ID]DriverPerformance
	expenses     map[ID]Expense
	revenues     map[ID]Revenue
	fuel         map[ID]FuelConsumption
	routes       map[ID]Route
	feedback     map[ID]CustomerFeedback
	schedules    map[ID]Schedule
	locations    map[ID]LocationUpdate
	reports      map[ID]FinancialReport
}

// Snapshot captures a point-in-time clone of the store state, including the
// identity sequence high-water mark.
type Snapshot struct {
	NextID      uint64                     `json:"next_id"`
	Saccos      map[ID]Sacco               `json:"saccos"`
	Matatus     map[ID]Matatu              `json:"matatus"`
	Drivers     map[ID]Driver              `json:"drivers"`
	Trips       map[ID]Trip                `json:"trips"`
	Maintenance map[ID]Maintenance         `json:"maintenance"`
	Performance map[ID]DriverPerformance   `json:"driver_performance"`
	Expenses    map[ID]Expense             `json:"expenses"`
	Revenues    map[ID]Revenue             `json:"revenues"`
	Fuel        map[ID]FuelConsumption     `json:"fuel"`
	Routes      map[ID]Route               `json:"routes"`
	Feedback    map[ID]CustomerFeedback    `json:"feedback"`
	Schedules   map[ID]Schedule            `json:"schedules"`
	Locations   map[ID]LocationUpdate      `json:"locations"`
	Reports     map[ID]FinancialReport     `json:"reports"`
}

func newFleetState() fleetState {
	return fleetState{
		saccos:      make(map[ID]Sacco),
		matatus:     make(map[ID]Matatu),
		drivers:     make(map[ID]Driver),
		trips:       make(map[ID]Trip),
		maintenance: make(map[ID]Maintenance),
		performance: make(map[ID]DriverPerformance),
		expenses:    make(map[ID]Expense),
		revenues:    make(map[ID]Revenue),
		fuel:        make(map[ID]FuelConsumption),
		routes:      make(map[ID]Route),
		feedback:    make(map[ID]CustomerFeedback),
		schedules:   make(map[ID]Schedule),
		locations:   make(map[ID]LocationUpdate),
		reports:     make(map[ID]FinancialReport),
	}
}

// cloneRows copies a table, applying the per-type clone function to each row.
func cloneRows[T any](rows map[ID]T, clone func(T) T) map[ID]T {
	out := make(map[ID]T, len(rows))
	for k, v := range rows {
		out[k] = clone(v)
	}
	return out
}

// insertRow enforces the uniform encoded-size ceiling before committing a row
// to its table. Replaces-or-adds; idempotent on identical input.
func insertRow[T any](entity domain.EntityType, rows map[ID]T, id ID, row T) error {
	if err := domain.CheckRecordSize(entity, row); err != nil {
		return err
	}
	rows[id] = row
	return nil
}

// listRows returns table rows in ascending key order. A fresh call yields a
// fresh snapshot-consistent slice.
func listRows[T any](rows map[ID]T, clone func(T) T) []T {
	ids := make([]ID, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(rows[id]))
	}
	return out
}

func cloneSacco(s Sacco) Sacco                     { return s }
func cloneMatatu(m Matatu) Matatu                  { return m }
func cloneMaintenance(m Maintenance) Maintenance   { return m }
func clonePerformance(p DriverPerformance) DriverPerformance { return p }
func cloneExpense(e Expense) Expense               { return e }
func cloneRevenue(r Revenue) Revenue               { return r }
func cloneFuel(f FuelConsumption) FuelConsumption  { return f }
func cloneFeedback(f CustomerFeedback) CustomerFeedback { return f }
func cloneSchedule(s Schedule) Schedule            { return s }
func cloneLocation(l LocationUpdate) LocationUpdate { return l }

func cloneDriver(d Driver) Driver {
	cp := d
	if d.AssignedMatatu != nil {
		id := *d.AssignedMatatu
		cp.AssignedMatatu = &id
	}
	return cp
}

func cloneTrip(t Trip) Trip {
	cp := t
	if t.EndTime != nil {
		end := *t.EndTime
		cp.EndTime = &end
	}
	return cp
}

func cloneRoute(r Route) Route {
	cp := r
	cp.PeakHours = append([]domain.TimeWindow(nil), r.PeakHours...)
	cp.TrafficPatterns = append([]domain.TrafficPattern(nil), r.TrafficPatterns...)
	return cp
}

func cloneReport(r FinancialReport) FinancialReport {
	cp := r
	cp.ExpenseBreakdown = append([]domain.ExpenseCategory(nil), r.ExpenseBreakdown...)
	cp.RevenueBreakdown = append([]domain.RevenueSource(nil), r.RevenueBreakdown...)
	return cp
}

func (s fleetState) clone() fleetState {
	return fleetState{
		saccos:      cloneRows(s.saccos, cloneSacco),
		matatus:     cloneRows(s.matatus, cloneMatatu),
		drivers:     cloneRows(s.drivers, cloneDriver),
		trips:       cloneRows(s.trips, cloneTrip),
		maintenance: cloneRows(s.maintenance, cloneMaintenance),
		performance: cloneRows(s.performance, clonePerformance),
		expenses:    cloneRows(s.expenses, cloneExpense),
		revenues:    cloneRows(s.revenues, cloneRevenue),
		fuel:        cloneRows(s.fuel, cloneFuel),
		routes:      cloneRows(s.routes, cloneRoute),
		feedback:    cloneRows(s.feedback, cloneFeedback),
		schedules:   cloneRows(s.schedules, cloneSchedule),
		locations:   cloneRows(s.locations, cloneLocation),
		reports:     cloneRows(s.reports, cloneReport),
	}
}

func snapshotFromFleetState(state fleetState, nextID uint64) Snapshot {
	return Snapshot{
		NextID:      nextID,
		Saccos:      cloneRows(state.saccos, cloneSacco),
		Matatus:     cloneRows(state.matatus, cloneMatatu),
		Drivers:     cloneRows(state.drivers, cloneDriver),
		Trips:       cloneRows(state.trips, cloneTrip),
		Maintenance: cloneRows(state.maintenance, cloneMaintenance),
		Performance: cloneRows(state.performance, clonePerformance),
		Expenses:    cloneRows(state.expenses, cloneExpense),
		Revenues:    cloneRows(state.revenues, cloneRevenue),
		Fuel:        cloneRows(state.fuel, cloneFuel),
		Routes:      cloneRows(state.routes, cloneRoute),
		Feedback:    cloneRows(state.feedback, cloneFeedback),
		Schedules:   cloneRows(state.schedules, cloneSchedule),
		Locations:   cloneRows(state.locations, cloneLocation),
		Reports:     cloneRows(state.reports, cloneReport),
	}
}

func fleetStateFromSnapshot(s Snapshot) fleetState {
	state := newFleetState()
	for k, v := range s.Saccos {
		state.saccos[k] = cloneSacco(v)
	}
	for k, v := range s.Matatus {
		state.matatus[k] = cloneMatatu(v)
	}
	for k, v := range s.Drivers {
		state.drivers[k] = cloneDriver(v)
	}
	for k, v := range s.Trips {
		state.trips[k] = cloneTrip(v)
	}
	for k, v := range s.Maintenance {
		state.maintenance[k] = cloneMaintenance(v)
	}
	for k, v := range s.Performance {
		state.performance[k] = clonePerformance(v)
	}
	for k, v := range s.Expenses {
		state.expenses[k] = cloneExpense(v)
	}
	for k, v := range s.Revenues {
		state.revenues[k] = cloneRevenue(v)
	}
	for k, v := range s.Fuel {
		state.fuel[k] = cloneFuel(v)
	}
	for k, v := range s.Routes {
		state.routes[k] = cloneRoute(v)
	}
	for k, v := range s.Feedback {
		state.feedback[k] = cloneFeedback(v)
	}
	for k, v := range s.Schedules {
		state.schedules[k] = cloneSchedule(v)
	}
	for k, v := range s.Locations {
		state.locations[k] = cloneLocation(v)
	}
	for k, v := range s.Reports {
		state.reports[k] = cloneReport(v)
	}
	return state
}

// migrateSnapshot repairs snapshots written by earlier revisions: nil buckets
// become empty tables and the identity sequence is advanced past the highest
// key present so restored stores can never re-issue an identifier.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Saccos == nil {
		snapshot.Saccos = map[ID]Sacco{}
	}
	if snapshot.Matatus == nil {
		snapshot.Matatus = map[ID]Matatu{}
	}
	if snapshot.Drivers == nil {
		snapshot.Drivers = map[ID]Driver{}
	}
	if snapshot.Trips == nil {
		snapshot.Trips = map[ID]Trip{}
	}
	if snapshot.Maintenance == nil {
		snapshot.Maintenance = map[ID]Maintenance{}
	}
	if snapshot.Performance == nil {
		snapshot.Performance = map[ID]DriverPerformance{}
	}
	if snapshot.Expenses == nil {
		snapshot.Expenses = map[ID]Expense{}
	}
	if snapshot.Revenues == nil {
		snapshot.Revenues = map[ID]Revenue{}
	}
	if snapshot.Fuel == nil {
		snapshot.Fuel = map[ID]FuelConsumption{}
	}
	if snapshot.Routes == nil {
		snapshot.Routes = map[ID]Route{}
	}
	if snapshot.Feedback == nil {
		snapshot.Feedback = map[ID]CustomerFeedback{}
	}
	if snapshot.Schedules == nil {
		snapshot.Schedules = map[ID]Schedule{}
	}
	if snapshot.Locations == nil {
		snapshot.Locations = map[ID]LocationUpdate{}
	}
	if snapshot.Reports == nil {
		snapshot.Reports = map[ID]FinancialReport{}
	}

	high := snapshot.NextID
	bump := func(id ID) {
		if uint64(id) > high {
			high = uint64(id)
		}
	}
	for id := range snapshot.Saccos {
		bump(id)
	}
	for id := range snapshot.Matatus {
		bump(id)
	}
	for id := range snapshot.Drivers {
		bump(id)
	}
	for id := range snapshot.Trips {
		bump(id)
	}
	for id := range snapshot.Maintenance {
		bump(id)
	}
	for id := range snapshot.Performance {
		bump(id)
	}
	for id := range snapshot.Expenses {
		bump(id)
	}
	for id := range snapshot.Revenues {
		bump(id)
	}
	for id := range snapshot.Fuel {
		bump(id)
	}
	for id := range snapshot.Routes {
		bump(id)
	}
	for id := range snapshot.Feedback {
		bump(id)
	}
	for id := range snapshot.Schedules {
		bump(id)
	}
	for id := range snapshot.Locations {
		bump(id)
	}
	for id := range snapshot.Reports {
		bump(id)
	}
	snapshot.NextID = high
	return snapshot
}

// Store provides the in-memory transactional store for the fleet domain.
type Store struct {
	mu     sync.RWMutex
	state  fleetState
	seq    uint64
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newFleetState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// nextID advances the shared identity sequence and returns the post-increment
// value. The sequence lives outside the transactional clone: an identifier
// allocated by a transaction that later fails is an accepted gap, never
// reused and never rolled back.
func (s *Store) nextID() (ID, error) {
	if s.seq == math.MaxUint64 {
		return 0, domain.InvariantViolationError{Reason: "identifier sequence exhausted"}
	}
	s.seq++
	return ID(s.seq), nil
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromFleetState(s.state, s.seq)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	migrated := migrateSnapshot(snapshot)
	s.state = fleetStateFromSnapshot(migrated)
	s.seq = migrated.NextID
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the store clock. Intended for tests needing
// deterministic timestamps and month buckets.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The clone commits only when fn and the registered rules both
// succeed; on failure every table mutation is discarded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// GetSacco retrieves a SACCO by identifier.
func (s *Store) GetSacco(id ID) (Sacco, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sacco, ok := s.state.saccos[id]
	return cloneSacco(sacco), ok
}

// GetMatatu retrieves a vehicle by identifier.
func (s *Store) GetMatatu(id ID) (Matatu, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.matatus[id]
	return cloneMatatu(m), ok
}

// GetDriver retrieves a driver by identifier.
func (s *Store) GetDriver(id ID) (Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.state.drivers[id]
	return cloneDriver(d), ok
}

// GetTrip retrieves a trip by identifier.
func (s *Store) GetTrip(id ID) (Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.trips[id]
	return cloneTrip(t), ok
}

// GetRoute retrieves a route by identifier.
func (s *Store) GetRoute(id ID) (Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.routes[id]
	return cloneRoute(r), ok
}

// ListSaccos returns all SACCOs in ascending key order.
func (s *Store) ListSaccos() []Sacco {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.saccos, cloneSacco)
}

// ListMatatus returns all vehicles in ascending key order.
func (s *Store) ListMatatus() []Matatu {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.matatus, cloneMatatu)
}

// ListDrivers returns all drivers in ascending key order.
func (s *Store) ListDrivers() []Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.drivers, cloneDriver)
}

// ListTrips returns all trips in ascending key order.
func (s *Store) ListTrips() []Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.trips, cloneTrip)
}

// ListRoutes returns all routes in ascending key order.
func (s *Store) ListRoutes() []Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.routes, cloneRoute)
}

// ListSchedules returns all schedules in ascending key order.
func (s *Store) ListSchedules() []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRows(s.state.schedules, cloneSchedule)
}
