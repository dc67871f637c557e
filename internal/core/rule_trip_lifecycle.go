package core

import (
	"context"
	"fmt"

	"matatucore/pkg/domain"
)

// NewTripLifecycleRule returns the in-transaction rule blocking completed
// trips that carry no end time.
func NewTripLifecycleRule() domain.Rule {
	return tripLifecycleRule{}
}

type tripLifecycleRule struct{}

func (tripLifecycleRule) Name() string { return "trip_lifecycle" }

func (tripLifecycleRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityTrip {
			continue
		}
		trip, ok := change.After.(domain.Trip)
		if !ok {
			continue
		}
		if trip.Status == domain.TripStatusCompleted && trip.EndTime == nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "trip_lifecycle",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("trip %d completed without an end time", trip.ID),
				Entity:   domain.EntityTrip,
				EntityID: trip.ID,
			})
		}
	}
	return res, nil
}
