package core

import (
	"context"
	"fmt"

	"matatucore/pkg/domain"
)

// NewScheduleReferenceRule returns the in-transaction rule blocking schedules
// that reference a missing vehicle, driver, or route.
func NewScheduleReferenceRule() domain.Rule {
	return scheduleReferenceRule{}
}

type scheduleReferenceRule struct{}

func (scheduleReferenceRule) Name() string { return "schedule_reference" }

func (scheduleReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntitySchedule {
			continue
		}
		schedule, ok := change.After.(domain.Schedule)
		if !ok {
			continue
		}
		if _, ok := view.FindMatatu(schedule.MatatuID); !ok {
			res.Violations = append(res.Violations, missingReference(schedule.ID, domain.EntityMatatu, schedule.MatatuID))
		}
		if _, ok := view.FindDriver(schedule.DriverID); !ok {
			res.Violations = append(res.Violations, missingReference(schedule.ID, domain.EntityDriver, schedule.DriverID))
		}
		if _, ok := view.FindRoute(schedule.RouteID); !ok {
			res.Violations = append(res.Violations, missingReference(schedule.ID, domain.EntityRoute, schedule.RouteID))
		}
	}
	return res, nil
}

func missingReference(scheduleID domain.ID, entity domain.EntityType, id domain.ID) domain.Violation {
	return domain.Violation{
		Rule:     "schedule_reference",
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("schedule %d references missing %s %d", scheduleID, entity, id),
		Entity:   domain.EntitySchedule,
		EntityID: scheduleID,
	}
}
