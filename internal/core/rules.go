package core

import "matatucore/pkg/domain"

// RulesEngine aliases the domain engine for call sites inside the service
// layer.
type RulesEngine = domain.RulesEngine

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewScheduleReferenceRule())
	engine.Register(NewTripLifecycleRule())
	engine.Register(NewFeedbackRatingRule())
	return engine
}
