package core

import (
	"context"
	"fmt"

	"matatucore/pkg/domain"
)

// NewFeedbackRatingRule returns the in-transaction rule warning on feedback
// ratings outside the 1-5 band. Out-of-band feedback still commits; the
// finding surfaces through the transaction result.
func NewFeedbackRatingRule() domain.Rule {
	return feedbackRatingRule{}
}

type feedbackRatingRule struct{}

func (feedbackRatingRule) Name() string { return "feedback_rating_bounds" }

func (feedbackRatingRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityFeedback {
			continue
		}
		fb, ok := change.After.(domain.CustomerFeedback)
		if !ok {
			continue
		}
		for _, axis := range []struct {
			name  string
			value uint8
		}{
			{"rating", fb.Rating},
			{"cleanliness", fb.Cleanliness},
			{"punctuality", fb.Punctuality},
			{"safety", fb.Safety},
		} {
			if axis.value < 1 || axis.value > 5 {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "feedback_rating_bounds",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("feedback %d %s %d outside 1-5", fb.ID, axis.name, axis.value),
					Entity:   domain.EntityFeedback,
					EntityID: fb.ID,
				})
			}
		}
	}
	return res, nil
}
