package core

import (
	"context"
	"time"

	"matatucore/pkg/domain"
)

// OptimizeRoute derives a congestion-adjusted departure recommendation for a
// route at the given instant. A zero instant means now. The result is
// computed on demand and never persisted.
func (s *Service) OptimizeRoute(ctx context.Context, routeID ID, at time.Time) (RouteOptimization, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}
	var opt RouteOptimization
	err := s.view(ctx, "optimize_route", func(view TransactionView) error {
		route, ok := view.FindRoute(routeID)
		if !ok {
			return domain.NotFoundError{Entity: EntityRoute, ID: routeID}
		}
		unix := at.Unix()
		hour := uint8((unix / 3600) % 24)
		day := uint8((unix / 86400) % 7)

		// First pattern whose window covers the instant wins; no match means
		// zero congestion.
		var pattern TrafficPattern
		for _, tp := range route.TrafficPatterns {
			w := tp.TimeWindow
			if w.DayOfWeek == day && w.StartHour <= hour && w.EndHour > hour {
				pattern = tp
				break
			}
		}

		delayFactor := 1 + float64(pattern.CongestionLevel)/5
		opt = RouteOptimization{
			RouteID:           routeID,
			OptimalStartTime:  at.Add(10 * time.Minute),
			EstimatedDuration: uint32(float64(route.EstimatedTime) * delayFactor),
			CongestionLevel:   pattern.CongestionLevel,
			AlternateRoutes:   []Route{},
		}
		return nil
	})
	return opt, err
}

// CreateAutomatedSchedule builds the day's schedule batch for a SACCO: its
// active vehicles are paired with its drivers positionally, and each pair is
// scheduled on every route for every peak window. Vehicles or drivers beyond
// the shorter list remain unscheduled.
func (s *Service) CreateAutomatedSchedule(ctx context.Context, saccoID ID, date time.Time) ([]Schedule, Result, error) {
	var batch []Schedule
	res, err := s.run(ctx, "create_automated_schedule", nil, func(tx Transaction) error {
		if _, ok := tx.FindSacco(saccoID); !ok {
			return domain.NotFoundError{Entity: EntitySacco, ID: saccoID}
		}
		snapshot := tx.Snapshot()

		var matatus []Matatu
		for _, m := range snapshot.ListMatatus() {
			if m.SaccoID == saccoID && m.Status == domain.MatatuStatusActive {
				matatus = append(matatus, m)
			}
		}
		var drivers []Driver
		for _, d := range snapshot.ListDrivers() {
			if d.SaccoID == saccoID {
				drivers = append(drivers, d)
			}
		}
		routes := snapshot.ListRoutes()

		pairs := len(matatus)
		if len(drivers) < pairs {
			pairs = len(drivers)
		}
		batch = batch[:0]
		for i := 0; i < pairs; i++ {
			for _, route := range routes {
				for _, window := range route.PeakHours {
					start := date.Add(time.Duration(window.StartHour) * time.Hour)
					end := start.Add(time.Duration(route.EstimatedTime) * time.Minute)
					created, err := tx.CreateSchedule(Schedule{
						MatatuID:  matatus[i].ID,
						DriverID:  drivers[i].ID,
						RouteID:   route.ID,
						StartTime: start,
						EndTime:   end,
						Status:    domain.ScheduleStatusScheduled,
					})
					if err != nil {
						return err
					}
					batch = append(batch, created)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return batch, res, nil
}

// UpdateLocationPayload carries one vehicle telemetry sample.
type UpdateLocationPayload struct {
	MatatuID  ID      `json:"matatu_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
}

// UpdateLocation stores the telemetry sample, then re-estimates the arrival
// time of every in-progress schedule for that vehicle. Remaining distance is
// a placeholder zero, so the estimate collapses to the sample timestamp; a
// non-positive speed leaves it there too.
func (s *Service) UpdateLocation(ctx context.Context, payload UpdateLocationPayload) (LocationUpdate, Result, error) {
	var created LocationUpdate
	res, err := s.run(ctx, "update_location", &created.ID, func(tx Transaction) error {
		var err error
		created, err = tx.CreateLocationUpdate(LocationUpdate{
			MatatuID:  payload.MatatuID,
			Latitude:  payload.Latitude,
			Longitude: payload.Longitude,
			Speed:     payload.Speed,
			Timestamp: tx.Now(),
		})
		if err != nil {
			return err
		}
		for _, schedule := range tx.Snapshot().ListSchedules() {
			if schedule.MatatuID != payload.MatatuID || schedule.Status != domain.ScheduleStatusInProgress {
				continue
			}
			arrival := estimateArrival(created)
			if _, err := tx.UpdateSchedule(schedule.ID, func(sched *Schedule) error {
				sched.EndTime = arrival
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return created, res, err
}

func estimateArrival(sample LocationUpdate) time.Time {
	const remainingDistance = 0.0
	if sample.Speed <= 0 {
		return sample.Timestamp
	}
	hours := remainingDistance / sample.Speed
	return sample.Timestamp.Add(time.Duration(hours * float64(time.Hour)))
}
