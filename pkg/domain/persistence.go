package domain

import (
	"context"
	"time"
)

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Create methods allocate an identifier
// from the shared sequence when the record's ID is zero, stamp CreatedAt from
// the transaction clock, enforce the per-record size ceiling, and validate
// foreign keys before the first write.
type Transaction interface {
	Snapshot() TransactionView
	Now() time.Time
	NextID() (ID, error)

	CreateSacco(Sacco) (Sacco, error)
	CreateMatatu(Matatu) (Matatu, error)
	CreateDriver(Driver) (Driver, error)
	CreateTrip(Trip) (Trip, error)
	CreateMaintenance(Maintenance) (Maintenance, error)
	CreateDriverPerformance(DriverPerformance) (DriverPerformance, error)
	CreateExpense(Expense) (Expense, error)
	CreateRevenue(Revenue) (Revenue, error)
	CreateFuelConsumption(FuelConsumption) (FuelConsumption, error)
	CreateRoute(Route) (Route, error)
	CreateFeedback(CustomerFeedback) (CustomerFeedback, error)
	CreateSchedule(Schedule) (Schedule, error)
	CreateLocationUpdate(LocationUpdate) (LocationUpdate, error)
	CreateFinancialReport(FinancialReport) (FinancialReport, error)

	UpdateDriver(id ID, mutator func(*Driver) error) (Driver, error)
	UpdateTrip(id ID, mutator func(*Trip) error) (Trip, error)
	UpdateSchedule(id ID, mutator func(*Schedule) error) (Schedule, error)
	UpdateDriverPerformance(id ID, mutator func(*DriverPerformance) error) (DriverPerformance, error)

	FindSacco(id ID) (Sacco, bool)
	FindMatatu(id ID) (Matatu, bool)
	FindDriver(id ID) (Driver, bool)
	FindTrip(id ID) (Trip, bool)
	FindRoute(id ID) (Route, bool)
}

// TransactionView provides read-only, snapshot-consistent access to the
// store state. List methods return entries in ascending key order.
type TransactionView interface {
	RuleView
	ListMaintenance() []Maintenance
	ListDriverPerformance() []DriverPerformance
	ListExpenses() []Expense
	ListRevenues() []Revenue
	ListFuelConsumption() []FuelConsumption
	ListFeedback() []CustomerFeedback
	ListLocationUpdates() []LocationUpdate
	ListFinancialReports() []FinancialReport
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSacco(id ID) (Sacco, bool)
	GetMatatu(id ID) (Matatu, bool)
	GetDriver(id ID) (Driver, bool)
	GetTrip(id ID) (Trip, bool)
	GetRoute(id ID) (Route, bool)
	ListSaccos() []Sacco
	ListMatatus() []Matatu
	ListDrivers() []Driver
	ListTrips() []Trip
	ListRoutes() []Route
	ListSchedules() []Schedule
}
