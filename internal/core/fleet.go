package core

import (
	"context"
	"time"

	"matatucore/pkg/domain"
)

// CreateSaccoPayload carries the fields for registering a cooperative.
type CreateSaccoPayload struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
}

func (p CreateSaccoPayload) validate() error {
	if p.Name == "" {
		return domain.InvalidPayloadError{Field: "name"}
	}
	if p.Location == "" {
		return domain.InvalidPayloadError{Field: "location"}
	}
	return nil
}

// CreateSacco registers a new cooperative.
func (s *Service) CreateSacco(ctx context.Context, payload CreateSaccoPayload) (Sacco, Result, error) {
	if err := payload.validate(); err != nil {
		return Sacco{}, Result{}, err
	}
	var created Sacco
	res, err := s.run(ctx, "create_sacco", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateSacco(Sacco{
			Name:     payload.Name,
			Location: payload.Location,
			Contact:  payload.Contact,
			Email:    payload.Email,
		})
		return err
	})
	return created, res, err
}

// RegisterMatatuPayload carries the fields for registering a vehicle.
type RegisterMatatuPayload struct {
	SaccoID     ID     `json:"sacco_id"`
	PlateNumber string `json:"plate_number"`
	Capacity    uint32 `json:"capacity"`
	Route       string `json:"route"`
}

func (p RegisterMatatuPayload) validate() error {
	if p.PlateNumber == "" {
		return domain.InvalidPayloadError{Field: "plate_number"}
	}
	if p.Capacity == 0 {
		return domain.InvalidPayloadError{Field: "capacity"}
	}
	return nil
}

// RegisterMatatu registers a vehicle under an existing SACCO. New vehicles
// start active.
func (s *Service) RegisterMatatu(ctx context.Context, payload RegisterMatatuPayload) (Matatu, Result, error) {
	if err := payload.validate(); err != nil {
		return Matatu{}, Result{}, err
	}
	var created Matatu
	res, err := s.run(ctx, "register_matatu", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateMatatu(Matatu{
			SaccoID:     payload.SaccoID,
			PlateNumber: payload.PlateNumber,
			Capacity:    payload.Capacity,
			Route:       payload.Route,
			Status:      domain.MatatuStatusActive,
		})
		return err
	})
	return created, res, err
}

// RegisterDriverPayload carries the fields for registering a driver.
type RegisterDriverPayload struct {
	SaccoID       ID     `json:"sacco_id"`
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
	Contact       string `json:"contact"`
}

func (p RegisterDriverPayload) validate() error {
	if p.Name == "" {
		return domain.InvalidPayloadError{Field: "name"}
	}
	if p.LicenseNumber == "" {
		return domain.InvalidPayloadError{Field: "license_number"}
	}
	return nil
}

// RegisterDriver registers a driver under an existing SACCO. Drivers start
// unassigned.
func (s *Service) RegisterDriver(ctx context.Context, payload RegisterDriverPayload) (Driver, Result, error) {
	if err := payload.validate(); err != nil {
		return Driver{}, Result{}, err
	}
	var created Driver
	res, err := s.run(ctx, "register_driver", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateDriver(Driver{
			SaccoID:       payload.SaccoID,
			Name:          payload.Name,
			LicenseNumber: payload.LicenseNumber,
			Contact:       payload.Contact,
		})
		return err
	})
	return created, res, err
}

// AssignDriverToMatatu sets the driver's vehicle assignment after verifying
// both sides exist.
func (s *Service) AssignDriverToMatatu(ctx context.Context, driverID, matatuID ID) (Driver, Result, error) {
	var updated Driver
	res, err := s.run(ctx, "assign_driver_to_matatu", &updated.ID, func(tx Transaction) error {
		if _, ok := tx.FindMatatu(matatuID); !ok {
			return domain.NotFoundError{Entity: EntityMatatu, ID: matatuID}
		}
		var err error
		updated, err = tx.UpdateDriver(driverID, func(d *Driver) error {
			id := matatuID
			d.AssignedMatatu = &id
			return nil
		})
		return err
	})
	return updated, res, err
}

// StartTripPayload carries the fields for opening a trip.
type StartTripPayload struct {
	MatatuID ID     `json:"matatu_id"`
	DriverID ID     `json:"driver_id"`
	Route    string `json:"route"`
}

func (p StartTripPayload) validate() error {
	if p.Route == "" {
		return domain.InvalidPayloadError{Field: "route"}
	}
	return nil
}

// StartTrip opens an ongoing trip for an existing vehicle and driver. The
// passenger count stays zero until the trip ends with the boarded total.
func (s *Service) StartTrip(ctx context.Context, payload StartTripPayload) (Trip, Result, error) {
	if err := payload.validate(); err != nil {
		return Trip{}, Result{}, err
	}
	var created Trip
	res, err := s.run(ctx, "start_trip", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateTrip(Trip{
			MatatuID:  payload.MatatuID,
			DriverID:  payload.DriverID,
			StartTime: tx.Now(),
			Route:     payload.Route,
			Status:    domain.TripStatusOngoing,
		})
		return err
	})
	return created, res, err
}

// EndTrip completes an ongoing trip, records its passenger count and revenue,
// and accrues the driver's monthly performance.
func (s *Service) EndTrip(ctx context.Context, tripID ID, passengers uint32, revenue float64) (Trip, Result, error) {
	var updated Trip
	res, err := s.run(ctx, "end_trip", &updated.ID, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTrip(tripID, func(t *Trip) error {
			if t.Status != domain.TripStatusOngoing {
				return domain.StateError{Entity: EntityTrip, ID: tripID, Reason: "trip is not ongoing"}
			}
			end := tx.Now()
			t.EndTime = &end
			t.Status = domain.TripStatusCompleted
			t.Passengers = passengers
			t.Revenue = revenue
			return nil
		})
		if err != nil {
			return err
		}
		return accrueDriverPerformance(tx, updated.DriverID, revenue)
	})
	return updated, res, err
}

// RecordMaintenancePayload carries the fields for a maintenance entry.
type RecordMaintenancePayload struct {
	MatatuID    ID        `json:"matatu_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
}

func (p RecordMaintenancePayload) validate() error {
	if p.Description == "" {
		return domain.InvalidPayloadError{Field: "description"}
	}
	return nil
}

// RecordMaintenance appends a vehicle maintenance entry.
func (s *Service) RecordMaintenance(ctx context.Context, payload RecordMaintenancePayload) (Maintenance, Result, error) {
	if err := payload.validate(); err != nil {
		return Maintenance{}, Result{}, err
	}
	var created Maintenance
	res, err := s.run(ctx, "record_maintenance", &created.ID, func(tx Transaction) error {
		date := payload.Date
		if date.IsZero() {
			date = tx.Now()
		}
		var err error
		created, err = tx.CreateMaintenance(Maintenance{
			MatatuID:    payload.MatatuID,
			Date:        date,
			Description: payload.Description,
			Cost:        payload.Cost,
			Status:      domain.MaintenanceStatusScheduled,
		})
		return err
	})
	return created, res, err
}

// RecordFuelPayload carries the fields for a fuel purchase entry.
type RecordFuelPayload struct {
	MatatuID        ID      `json:"matatu_id"`
	Liters          float64 `json:"liters"`
	Cost            float64 `json:"cost"`
	OdometerReading uint64  `json:"odometer_reading"`
}

func (p RecordFuelPayload) validate() error {
	if p.Liters <= 0 {
		return domain.InvalidPayloadError{Field: "liters"}
	}
	return nil
}

// RecordFuel appends a fuel consumption entry.
func (s *Service) RecordFuel(ctx context.Context, payload RecordFuelPayload) (FuelConsumption, Result, error) {
	if err := payload.validate(); err != nil {
		return FuelConsumption{}, Result{}, err
	}
	var created FuelConsumption
	res, err := s.run(ctx, "record_fuel", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateFuelConsumption(FuelConsumption{
			MatatuID:        payload.MatatuID,
			Date:            tx.Now(),
			Liters:          payload.Liters,
			Cost:            payload.Cost,
			OdometerReading: payload.OdometerReading,
		})
		return err
	})
	return created, res, err
}

// RecordExpensePayload carries the fields for an expense ledger entry.
type RecordExpensePayload struct {
	SaccoID     ID      `json:"sacco_id"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (p RecordExpensePayload) validate() error {
	if p.Category == "" {
		return domain.InvalidPayloadError{Field: "category"}
	}
	return nil
}

// RecordExpense appends a SACCO expense ledger entry.
func (s *Service) RecordExpense(ctx context.Context, payload RecordExpensePayload) (Expense, Result, error) {
	if err := payload.validate(); err != nil {
		return Expense{}, Result{}, err
	}
	var created Expense
	res, err := s.run(ctx, "record_expense", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateExpense(Expense{
			SaccoID:     payload.SaccoID,
			Date:        tx.Now(),
			Category:    payload.Category,
			Amount:      payload.Amount,
			Description: payload.Description,
		})
		return err
	})
	return created, res, err
}

// RecordRevenuePayload carries the fields for a revenue ledger entry.
type RecordRevenuePayload struct {
	SaccoID     ID      `json:"sacco_id"`
	MatatuID    ID      `json:"matatu_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (p RecordRevenuePayload) validate() error {
	if p.Description == "" {
		return domain.InvalidPayloadError{Field: "description"}
	}
	return nil
}

// RecordRevenue appends a SACCO revenue ledger entry.
func (s *Service) RecordRevenue(ctx context.Context, payload RecordRevenuePayload) (Revenue, Result, error) {
	if err := payload.validate(); err != nil {
		return Revenue{}, Result{}, err
	}
	var created Revenue
	res, err := s.run(ctx, "record_revenue", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateRevenue(Revenue{
			SaccoID:     payload.SaccoID,
			Date:        tx.Now(),
			MatatuID:    payload.MatatuID,
			Amount:      payload.Amount,
			Description: payload.Description,
		})
		return err
	})
	return created, res, err
}

// CreateRoutePayload carries the fields for registering a route.
type CreateRoutePayload struct {
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

func (p CreateRoutePayload) validate() error {
	if p.Name == "" {
		return domain.InvalidPayloadError{Field: "name"}
	}
	if p.StartPoint == "" {
		return domain.InvalidPayloadError{Field: "start_point"}
	}
	if p.EndPoint == "" {
		return domain.InvalidPayloadError{Field: "end_point"}
	}
	return nil
}

// CreateRoute registers a route definition. Routes must exist before they can
// be optimized or scheduled.
func (s *Service) CreateRoute(ctx context.Context, payload CreateRoutePayload) (Route, Result, error) {
	if err := payload.validate(); err != nil {
		return Route{}, Result{}, err
	}
	var created Route
	res, err := s.run(ctx, "create_route", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateRoute(Route{
			Name:              payload.Name,
			StartPoint:        payload.StartPoint,
			EndPoint:          payload.EndPoint,
			Distance:          payload.Distance,
			EstimatedTime:     payload.EstimatedTime,
			PeakHours:         payload.PeakHours,
			TrafficPatterns:   payload.TrafficPatterns,
			AveragePassengers: payload.AveragePassengers,
			Price:             payload.Price,
		})
		return err
	})
	return created, res, err
}

// SubmitFeedbackPayload carries the fields for a customer feedback record.
type SubmitFeedbackPayload struct {
	TripID      ID     `json:"trip_id"`
	Rating      uint8  `json:"rating"`
	Cleanliness uint8  `json:"cleanliness"`
	Punctuality uint8  `json:"punctuality"`
	Safety      uint8  `json:"safety"`
	Comment     string `json:"comment"`
}

// SubmitFeedback stores a trip rating and accrues the trip driver's monthly
// performance with the rating value. Feedback for unknown trips is stored
// without accrual.
func (s *Service) SubmitFeedback(ctx context.Context, payload SubmitFeedbackPayload) (CustomerFeedback, Result, error) {
	var created CustomerFeedback
	res, err := s.run(ctx, "submit_feedback", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateFeedback(CustomerFeedback{
			TripID:      payload.TripID,
			Rating:      payload.Rating,
			Cleanliness: payload.Cleanliness,
			Punctuality: payload.Punctuality,
			Safety:      payload.Safety,
			Comment:     payload.Comment,
			Timestamp:   tx.Now(),
		})
		if err != nil {
			return err
		}
		trip, ok := tx.FindTrip(payload.TripID)
		if !ok {
			return nil
		}
		return accrueDriverPerformance(tx, trip.DriverID, float64(payload.Rating))
	})
	return created, res, err
}
