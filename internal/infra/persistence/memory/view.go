package memory

import "matatucore/pkg/domain"

var _ domain.TransactionView = (*stateView)(nil)

// stateView adapts a fleetState to the read-only view consumed by rules and
// query paths. It borrows the state it points at; callers hand it a clone
// when isolation is required.
type stateView struct {
	state *fleetState
}

func newTransactionView(state *fleetState) TransactionView {
	return &stateView{state: state}
}

func (v *stateView) ListSaccos() []Sacco   { return listRows(v.state.saccos, cloneSacco) }
func (v *stateView) ListMatatus() []Matatu { return listRows(v.state.matatus, cloneMatatu) }
func (v *stateView) ListDrivers() []Driver { return listRows(v.state.drivers, cloneDriver) }
func (v *stateView) ListTrips() []Trip     { return listRows(v.state.trips, cloneTrip) }
func (v *stateView) ListRoutes() []Route   { return listRows(v.state.routes, cloneRoute) }

func (v *stateView) ListSchedules() []Schedule {
	return listRows(v.state.schedules, cloneSchedule)
}

func (v *stateView) ListMaintenance() []Maintenance {
	return listRows(v.state.maintenance, cloneMaintenance)
}

func (v *stateView) ListDriverPerformance() []DriverPerformance {
	return listRows(v.state.performance, clonePerformance)
}

func (v *stateView) ListExpenses() []Expense {
	return listRows(v.state.expenses, cloneExpense)
}

func (v *stateView) ListRevenues() []Revenue {
	return listRows(v.state.revenues, cloneRevenue)
}

func (v *stateView) ListFuelConsumption() []FuelConsumption {
	return listRows(v.state.fuel, cloneFuel)
}

func (v *stateView) ListFeedback() []CustomerFeedback {
	return listRows(v.state.feedback, cloneFeedback)
}

func (v *stateView) ListLocationUpdates() []LocationUpdate {
	return listRows(v.state.locations, cloneLocation)
}

func (v *stateView) ListFinancialReports() []FinancialReport {
	return listRows(v.state.reports, cloneReport)
}

func (v *stateView) FindSacco(id ID) (Sacco, bool) {
	s, ok := v.state.saccos[id]
	return cloneSacco(s), ok
}

func (v *stateView) FindMatatu(id ID) (Matatu, bool) {
	m, ok := v.state.matatus[id]
	return cloneMatatu(m), ok
}

func (v *stateView) FindDriver(id ID) (Driver, bool) {
	d, ok := v.state.drivers[id]
	return cloneDriver(d), ok
}

func (v *stateView) FindTrip(id ID) (Trip, bool) {
	t, ok := v.state.trips[id]
	return cloneTrip(t), ok
}

func (v *stateView) FindRoute(id ID) (Route, bool) {
	r, ok := v.state.routes[id]
	return cloneRoute(r), ok
}
