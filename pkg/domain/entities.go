// Package domain defines the core persistent entities, value types, typed
// errors, and rule evaluation primitives used by matatucore.
package domain

import "time"

// ID is the key type for every persisted record. Identifiers are drawn from a
// single shared monotonic sequence, so values interleave across entity types
// but are globally unique.
type ID uint64

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySacco identifies a transit cooperative record.
	EntitySacco EntityType = "sacco"
	// EntityMatatu identifies a vehicle record.
	EntityMatatu EntityType = "matatu"
	// EntityDriver identifies a driver record.
	EntityDriver EntityType = "driver"
	// EntityTrip identifies a trip record.
	EntityTrip EntityType = "trip"
	// EntityMaintenance identifies a vehicle maintenance record.
	EntityMaintenance EntityType = "maintenance"
	// EntityDriverPerformance identifies a per-driver monthly accrual record.
	EntityDriverPerformance EntityType = "driver_performance"
	// EntityExpense identifies a SACCO expense ledger entry.
	EntityExpense EntityType = "expense"
	// EntityRevenue identifies a SACCO revenue ledger entry.
	EntityRevenue EntityType = "revenue"
	// EntityFuel identifies a fuel consumption record.
	EntityFuel EntityType = "fuel_consumption"
	// EntityRoute identifies a route definition record.
	EntityRoute EntityType = "route"
	// EntityFeedback identifies a customer feedback record.
	EntityFeedback EntityType = "customer_feedback"
	// EntitySchedule identifies a planned vehicle assignment record.
	EntitySchedule EntityType = "schedule"
	// EntityLocationUpdate identifies a vehicle telemetry sample.
	EntityLocationUpdate EntityType = "location_update"
	// EntityFinancialReport identifies a persisted financial report snapshot.
	EntityFinancialReport EntityType = "financial_report"
)

// MatatuStatus enumerates canonical vehicle availability states.
type MatatuStatus string

// Canonical vehicle statuses used for scheduling eligibility.
const (
	MatatuStatusActive      MatatuStatus = "active"
	MatatuStatusInactive    MatatuStatus = "inactive"
	MatatuStatusMaintenance MatatuStatus = "maintenance"
)

// TripStatus enumerates trip lifecycle states.
type TripStatus string

// Canonical trip statuses. A trip is created ongoing and transitions to
// completed exactly once; ending a trip in any other state is rejected.
const (
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// MaintenanceStatus enumerates maintenance workflow states.
type MaintenanceStatus string

// Canonical maintenance statuses.
const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

// ScheduleStatus enumerates schedule lifecycle states.
type ScheduleStatus string

// Canonical schedule statuses used by the scheduling engine and the
// arrival-estimate recomputation path.
const (
	ScheduleStatusScheduled  ScheduleStatus = "scheduled"
	ScheduleStatusInProgress ScheduleStatus = "in_progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Sacco represents a transit cooperative; the top-level tenant owning
// vehicles and drivers. Immutable after registration.
type Sacco struct {
	Base
	Name     string `json:"name"`
	Location string `json:"location"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
}

// Matatu represents a minibus vehicle owned by a SACCO.
type Matatu struct {
	Base
	SaccoID     ID           `json:"sacco_id"`
	PlateNumber string       `json:"plate_number"`
	Capacity    uint32       `json:"capacity"`
	Route       string       `json:"route"`
	Status      MatatuStatus `json:"status"`
}

// Driver represents a driver employed by a SACCO. AssignedMatatu is set only
// through the explicit assignment operation, never implicitly.
type Driver struct {
	Base
	SaccoID        ID     `json:"sacco_id"`
	Name           string `json:"name"`
	LicenseNumber  string `json:"license_number"`
	Contact        string `json:"contact"`
	AssignedMatatu *ID    `json:"assigned_matatu"`
}

// Trip represents one vehicle run from start to completion or cancellation.
type Trip struct {
	Base
	MatatuID   ID         `json:"matatu_id"`
	DriverID   ID         `json:"driver_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Passengers uint32     `json:"passengers"`
	Route      string     `json:"route"`
	Status     TripStatus `json:"status"`
	Revenue    float64    `json:"revenue"`
}

// Maintenance records a vehicle-scoped maintenance cost entry. Append-only.
type Maintenance struct {
	Base
	MatatuID    ID                `json:"matatu_id"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Cost        float64           `json:"cost"`
	Status      MaintenanceStatus `json:"status"`
}

// DriverPerformance accrues per-driver statistics inside a coarse 30-day
// month bucket. Exactly one record exists per (driver, month) pair; the
// accrual fields only ever increase.
type DriverPerformance struct {
	Base
	DriverID        ID      `json:"driver_id"`
	Month           uint64  `json:"month"`
	TripsCompleted  uint32  `json:"trips_completed"`
	TotalRevenue    float64 `json:"total_revenue"`
	CustomerRating  float32 `json:"customer_rating"`
	ComplianceScore float32 `json:"compliance_score"`
}

// Expense is a SACCO-scoped, time-stamped ledger entry. The free-text
// category is the grouping key for expense breakdowns.
type Expense struct {
	Base
	SaccoID     ID        `json:"sacco_id"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
}

// Revenue is a SACCO-scoped, time-stamped ledger entry. The free-text
// description is the grouping key for revenue breakdowns.
type Revenue struct {
	Base
	SaccoID     ID        `json:"sacco_id"`
	Date        time.Time `json:"date"`
	MatatuID    ID        `json:"matatu_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
}

// FuelConsumption records fuel purchased for a vehicle. Append-only.
type FuelConsumption struct {
	Base
	MatatuID        ID        `json:"matatu_id"`
	Date            time.Time `json:"date"`
	Liters          float64   `json:"liters"`
	Cost            float64   `json:"cost"`
	OdometerReading uint64    `json:"odometer_reading"`
}

// TimeWindow is a day-of-week plus hour-range during which a route has
// elevated demand. Days run 0-6 counted from the Unix epoch,
// (timestamp/86400) mod 7, so day 0 is a Thursday.
type TimeWindow struct {
	StartHour uint8 `json:"start_hour"`
	EndHour   uint8 `json:"end_hour"`
	DayOfWeek uint8 `json:"day_of_week"`
}

// TrafficPattern binds a congestion level (1-5) and an average delay in
// minutes to a time window.
type TrafficPattern struct {
	TimeWindow      TimeWindow `json:"time_window"`
	CongestionLevel uint8      `json:"congestion_level"`
	AverageDelay    uint32     `json:"average_delay"`
}

// Route describes a serviced route including its demand windows and observed
// traffic patterns. EstimatedTime is in minutes.
type Route struct {
	Base
	Name              string           `json:"name"`
	StartPoint        string           `json:"start_point"`
	EndPoint          string           `json:"end_point"`
	Distance          float64          `json:"distance"`
	EstimatedTime     uint32           `json:"estimated_time"`
	PeakHours         []TimeWindow     `json:"peak_hours"`
	TrafficPatterns   []TrafficPattern `json:"traffic_patterns"`
	AveragePassengers uint32           `json:"average_passengers"`
	Price             float64          `json:"price"`
}

// CustomerFeedback is a trip-scoped rating record across four 1-5 axes.
// Append-only; feeds driver performance accrual.
type CustomerFeedback struct {
	Base
	TripID      ID        `json:"trip_id"`
	Rating      uint8     `json:"rating"`
	Cleanliness uint8     `json:"cleanliness"`
	Punctuality uint8     `json:"punctuality"`
	Safety      uint8     `json:"safety"`
	Comment     string    `json:"comment"`
	Timestamp   time.Time `json:"timestamp"`
}

// Schedule is a planned (vehicle, driver, route, time-range) assignment.
// Produced in bulk by the scheduling engine; its end time is re-estimated by
// the location-update path while in progress.
type Schedule struct {
	Base
	MatatuID  ID             `json:"matatu_id"`
	DriverID  ID             `json:"driver_id"`
	RouteID   ID             `json:"route_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Status    ScheduleStatus `json:"status"`
}

// LocationUpdate is an append-only vehicle telemetry sample.
type LocationUpdate struct {
	Base
	MatatuID  ID        `json:"matatu_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpenseCategory is one row of a financial report expense breakdown.
type ExpenseCategory struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// RevenueSource is one row of a financial report revenue breakdown.
type RevenueSource struct {
	Source     string  `json:"source"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// FinancialReport is a derived, persisted point-in-time snapshot. It is never
// recomputed in place.
type FinancialReport struct {
	Base
	SaccoID          ID                `json:"sacco_id"`
	PeriodStart      time.Time         `json:"period_start"`
	PeriodEnd        time.Time         `json:"period_end"`
	TotalRevenue     float64           `json:"total_revenue"`
	TotalExpenses    float64           `json:"total_expenses"`
	ExpenseBreakdown []ExpenseCategory `json:"expense_breakdown"`
	RevenueBreakdown []RevenueSource   `json:"revenue_breakdown"`
	ProfitMargin     float64           `json:"profit_margin"`
}

// MatatuAnalytics summarizes trip and cost activity for one vehicle. Derived,
// never persisted.
type MatatuAnalytics struct {
	TotalTrips       int     `json:"total_trips"`
	TotalRevenue     float64 `json:"total_revenue"`
	MaintenanceCosts float64 `json:"maintenance_costs"`
	FuelCosts        float64 `json:"fuel_costs"`
	NetProfit        float64 `json:"net_profit"`
}

// RouteOptimization is the congestion-adjusted departure recommendation for a
// route at a point in time. Derived, never persisted. AlternateRoutes is a
// placeholder for future expansion and is always empty.
type RouteOptimization struct {
	RouteID           ID        `json:"route_id"`
	OptimalStartTime  time.Time `json:"optimal_start_time"`
	EstimatedDuration uint32    `json:"estimated_duration"`
	CongestionLevel   uint8     `json:"congestion_level"`
	AlternateRoutes   []Route   `json:"alternate_routes"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the mutations captured for rule evaluation. The
// fleet core has no delete primitive; updates are re-inserts under the same key.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was replaced under its existing key.
	ActionUpdate Action = "update"
)
