package core

import "matatucore/pkg/domain"

type (
	ID                 = domain.ID
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Sacco              = domain.Sacco
	Matatu             = domain.Matatu
	Driver             = domain.Driver
	Trip               = domain.Trip
	Maintenance        = domain.Maintenance
	DriverPerformance  = domain.DriverPerformance
	Expense            = domain.Expense
	Revenue            = domain.Revenue
	FuelConsumption    = domain.FuelConsumption
	TimeWindow         = domain.TimeWindow
	TrafficPattern     = domain.TrafficPattern
	Route              = domain.Route
	CustomerFeedback   = domain.CustomerFeedback
	Schedule           = domain.Schedule
	LocationUpdate     = domain.LocationUpdate
	FinancialReport    = domain.FinancialReport
	MatatuAnalytics    = domain.MatatuAnalytics
	RouteOptimization  = domain.RouteOptimization
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntitySacco             = domain.EntitySacco
	EntityMatatu            = domain.EntityMatatu
	EntityDriver            = domain.EntityDriver
	EntityTrip              = domain.EntityTrip
	EntityMaintenance       = domain.EntityMaintenance
	EntityDriverPerformance = domain.EntityDriverPerformance
	EntityExpense           = domain.EntityExpense
	EntityRevenue           = domain.EntityRevenue
	EntityFuel              = domain.EntityFuel
	EntityRoute             = domain.EntityRoute
	EntityFeedback          = domain.EntityFeedback
	EntitySchedule          = domain.EntitySchedule
	EntityLocationUpdate    = domain.EntityLocationUpdate
	EntityFinancialReport   = domain.EntityFinancialReport
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)
