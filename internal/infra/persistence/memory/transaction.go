package memory

import (
	"time"

	"matatucore/pkg/domain"
)

var _ domain.Transaction = (*transaction)(nil)

// transaction mutates a private clone of the store state. Mutations become
// visible only when RunInTransaction commits the clone.
type transaction struct {
	store   *Store
	state   fleetState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(entity domain.EntityType, before, after any) {
	action := domain.ActionUpdate
	if before == nil {
		action = domain.ActionCreate
	}
	tx.changes = append(tx.changes, Change{
		Entity: entity,
		Action: action,
		Before: before,
		After:  after,
	})
}

// Snapshot exposes the transaction's working state for read access.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Now returns the timestamp captured when the transaction began. Every write
// in the same transaction observes the same instant.
func (tx *transaction) Now() time.Time {
	return tx.now
}

// NextID allocates an identifier from the shared sequence. Allocation is not
// rolled back if the transaction later fails.
func (tx *transaction) NextID() (ID, error) {
	return tx.store.nextID()
}

func (tx *transaction) stamp(base *domain.Base) error {
	if base.ID == 0 {
		id, err := tx.store.nextID()
		if err != nil {
			return err
		}
		base.ID = id
	}
	base.CreatedAt = tx.now
	return nil
}

// CreateSacco persists a new cooperative.
func (tx *transaction) CreateSacco(sacco Sacco) (Sacco, error) {
	if err := tx.stamp(&sacco.Base); err != nil {
		return Sacco{}, err
	}
	if err := insertRow(domain.EntitySacco, tx.state.saccos, sacco.ID, cloneSacco(sacco)); err != nil {
		return Sacco{}, err
	}
	tx.recordChange(domain.EntitySacco, nil, cloneSacco(sacco))
	return sacco, nil
}

// CreateMatatu persists a new vehicle after verifying its owning SACCO exists.
func (tx *transaction) CreateMatatu(matatu Matatu) (Matatu, error) {
	if _, ok := tx.state.saccos[matatu.SaccoID]; !ok {
		return Matatu{}, domain.NotFoundError{Entity: domain.EntitySacco, ID: matatu.SaccoID}
	}
	if err := tx.stamp(&matatu.Base); err != nil {
		return Matatu{}, err
	}
	if err := insertRow(domain.EntityMatatu, tx.state.matatus, matatu.ID, cloneMatatu(matatu)); err != nil {
		return Matatu{}, err
	}
	tx.recordChange(domain.EntityMatatu, nil, cloneMatatu(matatu))
	return matatu, nil
}

// CreateDriver persists a new driver after verifying its SACCO exists.
func (tx *transaction) CreateDriver(driver Driver) (Driver, error) {
	if _, ok := tx.state.saccos[driver.SaccoID]; !ok {
		return Driver{}, domain.NotFoundError{Entity: domain.EntitySacco, ID: driver.SaccoID}
	}
	if err := tx.stamp(&driver.Base); err != nil {
		return Driver{}, err
	}
	if err := insertRow(domain.EntityDriver, tx.state.drivers, driver.ID, cloneDriver(driver)); err != nil {
		return Driver{}, err
	}
	tx.recordChange(domain.EntityDriver, nil, cloneDriver(driver))
	return driver, nil
}

// CreateTrip persists a new trip after verifying its vehicle and driver exist.
func (tx *transaction) CreateTrip(trip Trip) (Trip, error) {
	if _, ok := tx.state.matatus[trip.MatatuID]; !ok {
		return Trip{}, domain.NotFoundError{Entity: domain.EntityMatatu, ID: trip.MatatuID}
	}
	if _, ok := tx.state.drivers[trip.DriverID]; !ok {
		return Trip{}, domain.NotFoundError{Entity: domain.EntityDriver, ID: trip.DriverID}
	}
	if err := tx.stamp(&trip.Base); err != nil {
		return Trip{}, err
	}
	if err := insertRow(domain.EntityTrip, tx.state.trips, trip.ID, cloneTrip(trip)); err != nil {
		return Trip{}, err
	}
	tx.recordChange(domain.EntityTrip, nil, cloneTrip(trip))
	return trip, nil
}

// CreateMaintenance persists a maintenance record after verifying its vehicle.
func (tx *transaction) CreateMaintenance(record Maintenance) (Maintenance, error) {
	if _, ok := tx.state.matatus[record.MatatuID]; !ok {
		return Maintenance{}, domain.NotFoundError{Entity: domain.EntityMatatu, ID: record.MatatuID}
	}
	if err := tx.stamp(&record.Base); err != nil {
		return Maintenance{}, err
	}
	if err := insertRow(domain.EntityMaintenance, tx.state.maintenance, record.ID, cloneMaintenance(record)); err != nil {
		return Maintenance{}, err
	}
	tx.recordChange(domain.EntityMaintenance, nil, cloneMaintenance(record))
	return record, nil
}

// CreateDriverPerformance persists a monthly performance bucket.
func (tx *transaction) CreateDriverPerformance(perf DriverPerformance) (DriverPerformance, error) {
	if _, ok := tx.state.drivers[perf.DriverID]; !ok {
		return DriverPerformance{}, domain.NotFoundError{Entity: domain.EntityDriver, ID: perf.DriverID}
	}
	if err := tx.stamp(&perf.Base); err != nil {
		return DriverPerformance{}, err
	}
	if err := insertRow(domain.EntityDriverPerformance, tx.state.performance, perf.ID, clonePerformance(perf)); err != nil {
		return DriverPerformance{}, err
	}
	tx.recordChange(domain.EntityDriverPerformance, nil, clonePerformance(perf))
	return perf, nil
}

// CreateExpense persists an expense after verifying its SACCO exists.
func (tx *transaction) CreateExpense(expense Expense) (Expense, error) {
	if _, ok := tx.state.saccos[expense.SaccoID]; !ok {
		return Expense{}, domain.NotFoundError{Entity: domain.EntitySacco, ID: expense.SaccoID}
	}
	if err := tx.stamp(&expense.Base); err != nil {
		return Expense{}, err
	}
	if err := insertRow(domain.EntityExpense, tx.state.expenses, expense.ID, cloneExpense(expense)); err != nil {
		return Expense{}, err
	}
	tx.recordChange(domain.EntityExpense, nil, cloneExpense(expense))
	return expense, nil
}

// CreateRevenue persists a revenue record after verifying its SACCO exists.
func (tx *transaction) CreateRevenue(revenue Revenue) (Revenue, error) {
	if _, ok := tx.state.saccos[revenue.SaccoID]; !ok {
		return Revenue{}, domain.NotFoundError{Entity: domain.EntitySacco, ID: revenue.SaccoID}
	}
	if err := tx.stamp(&revenue.Base); err != nil {
		return Revenue{}, err
	}
	if err := insertRow(domain.EntityRevenue, tx.state.revenues, revenue.ID, cloneRevenue(revenue)); err != nil {
		return Revenue{}, err
	}
	tx.recordChange(domain.EntityRevenue, nil, cloneRevenue(revenue))
	return revenue, nil
}

// CreateFuelConsumption persists a fuel record after verifying its vehicle.
func (tx *transaction) CreateFuelConsumption(record FuelConsumption) (FuelConsumption, error) {
	if _, ok := tx.state.matatus[record.MatatuID]; !ok {
		return FuelConsumption{}, domain.NotFoundError{Entity: domain.EntityMatatu, ID: record.MatatuID}
	}
	if err := tx.stamp(&record.Base); err != nil {
		return FuelConsumption{}, err
	}
	if err := insertRow(domain.EntityFuel, tx.state.fuel, record.ID, cloneFuel(record)); err != nil {
		return FuelConsumption{}, err
	}
	tx.recordChange(domain.EntityFuel, nil, cloneFuel(record))
	return record, nil
}

// CreateRoute persists a new route definition.
func (tx *transaction) CreateRoute(route Route) (Route, error) {
	if err := tx.stamp(&route.Base); err != nil {
		return Route{}, err
	}
	if err := insertRow(domain.EntityRoute, tx.state.routes, route.ID, cloneRoute(route)); err != nil {
		return Route{}, err
	}
	tx.recordChange(domain.EntityRoute, nil, cloneRoute(route))
	return route, nil
}

// CreateFeedback persists customer feedback. Trip references are not
// enforced here; feedback is accepted even for unknown trips and scored by
// the rating-bounds rule.
func (tx *transaction) CreateFeedback(fb CustomerFeedback) (CustomerFeedback, error) {
	if err := tx.stamp(&fb.Base); err != nil {
		return CustomerFeedback{}, err
	}
	if err := insertRow(domain.EntityFeedback, tx.state.feedback, fb.ID, cloneFeedback(fb)); err != nil {
		return CustomerFeedback{}, err
	}
	tx.recordChange(domain.EntityFeedback, nil, cloneFeedback(fb))
	return fb, nil
}

// CreateSchedule persists a schedule. Reference integrity is evaluated by
// the schedule reference rule at commit time.
func (tx *transaction) CreateSchedule(schedule Schedule) (Schedule, error) {
	if err := tx.stamp(&schedule.Base); err != nil {
		return Schedule{}, err
	}
	if err := insertRow(domain.EntitySchedule, tx.state.schedules, schedule.ID, cloneSchedule(schedule)); err != nil {
		return Schedule{}, err
	}
	tx.recordChange(domain.EntitySchedule, nil, cloneSchedule(schedule))
	return schedule, nil
}

// CreateLocationUpdate persists a position report after verifying its
// vehicle.
func (tx *transaction) CreateLocationUpdate(update LocationUpdate) (LocationUpdate, error) {
	if _, ok := tx.state.matatus[update.MatatuID]; !ok {
		return LocationUpdate{}, domain.NotFoundError{Entity: domain.EntityMatatu, ID: update.MatatuID}
	}
	if err := tx.stamp(&update.Base); err != nil {
		return LocationUpdate{}, err
	}
	if err := insertRow(domain.EntityLocationUpdate, tx.state.locations, update.ID, cloneLocation(update)); err != nil {
		return LocationUpdate{}, err
	}
	tx.recordChange(domain.EntityLocationUpdate, nil, cloneLocation(update))
	return update, nil
}

// CreateFinancialReport persists an immutable report after verifying its SACCO.
func (tx *transaction) CreateFinancialReport(report FinancialReport) (FinancialReport, error) {
	if _, ok := tx.state.saccos[report.SaccoID]; !ok {
		return FinancialReport{}, domain.NotFoundError{Entity: domain.EntitySacco, ID: report.SaccoID}
	}
	if err := tx.stamp(&report.Base); err != nil {
		return FinancialReport{}, err
	}
	if err := insertRow(domain.EntityFinancialReport, tx.state.reports, report.ID, cloneReport(report)); err != nil {
		return FinancialReport{}, err
	}
	tx.recordChange(domain.EntityFinancialReport, nil, cloneReport(report))
	return report, nil
}

// UpdateDriver applies mutator to an existing driver and re-validates size.
func (tx *transaction) UpdateDriver(id ID, mutator func(*Driver) error) (Driver, error) {
	current, ok := tx.state.drivers[id]
	if !ok {
		return Driver{}, domain.NotFoundError{Entity: domain.EntityDriver, ID: id}
	}
	before := cloneDriver(current)
	updated := cloneDriver(current)
	if err := mutator(&updated); err != nil {
		return Driver{}, err
	}
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	if err := insertRow(domain.EntityDriver, tx.state.drivers, id, cloneDriver(updated)); err != nil {
		return Driver{}, err
	}
	tx.recordChange(domain.EntityDriver, before, cloneDriver(updated))
	return updated, nil
}

// UpdateTrip applies mutator to an existing trip and re-validates size.
func (tx *transaction) UpdateTrip(id ID, mutator func(*Trip) error) (Trip, error) {
	current, ok := tx.state.trips[id]
	if !ok {
		return Trip{}, domain.NotFoundError{Entity: domain.EntityTrip, ID: id}
	}
	before := cloneTrip(current)
	updated := cloneTrip(current)
	if err := mutator(&updated); err != nil {
		return Trip{}, err
	}
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	if err := insertRow(domain.EntityTrip, tx.state.trips, id, cloneTrip(updated)); err != nil {
		return Trip{}, err
	}
	tx.recordChange(domain.EntityTrip, before, cloneTrip(updated))
	return updated, nil
}

// UpdateSchedule applies mutator to an existing schedule.
func (tx *transaction) UpdateSchedule(id ID, mutator func(*Schedule) error) (Schedule, error) {
	current, ok := tx.state.schedules[id]
	if !ok {
		return Schedule{}, domain.NotFoundError{Entity: domain.EntitySchedule, ID: id}
	}
	before := cloneSchedule(current)
	updated := cloneSchedule(current)
	if err := mutator(&updated); err != nil {
		return Schedule{}, err
	}
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	if err := insertRow(domain.EntitySchedule, tx.state.schedules, id, cloneSchedule(updated)); err != nil {
		return Schedule{}, err
	}
	tx.recordChange(domain.EntitySchedule, before, cloneSchedule(updated))
	return updated, nil
}

// UpdateDriverPerformance applies mutator to an existing performance bucket.
func (tx *transaction) UpdateDriverPerformance(id ID, mutator func(*DriverPerformance) error) (DriverPerformance, error) {
	current, ok := tx.state.performance[id]
	if !ok {
		return DriverPerformance{}, domain.NotFoundError{Entity: domain.EntityDriverPerformance, ID: id}
	}
	before := clonePerformance(current)
	updated := clonePerformance(current)
	if err := mutator(&updated); err != nil {
		return DriverPerformance{}, err
	}
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	if err := insertRow(domain.EntityDriverPerformance, tx.state.performance, id, clonePerformance(updated)); err != nil {
		return DriverPerformance{}, err
	}
	tx.recordChange(domain.EntityDriverPerformance, before, clonePerformance(updated))
	return updated, nil
}

// FindSacco looks up a SACCO in the working state.
func (tx *transaction) FindSacco(id ID) (Sacco, bool) {
	s, ok := tx.state.saccos[id]
	return cloneSacco(s), ok
}

// FindMatatu looks up a vehicle in the working state.
func (tx *transaction) FindMatatu(id ID) (Matatu, bool) {
	m, ok := tx.state.matatus[id]
	return cloneMatatu(m), ok
}

// FindDriver looks up a driver in the working state.
func (tx *transaction) FindDriver(id ID) (Driver, bool) {
	d, ok := tx.state.drivers[id]
	return cloneDriver(d), ok
}

// FindTrip looks up a trip in the working state.
func (tx *transaction) FindTrip(id ID) (Trip, bool) {
	t, ok := tx.state.trips[id]
	return cloneTrip(t), ok
}

// FindRoute looks up a route in the working state.
func (tx *transaction) FindRoute(id ID) (Route, bool) {
	r, ok := tx.state.routes[id]
	return cloneRoute(r), ok
}
