package domain

import (
	"context"
	"errors"
	"testing"
)

type stubRule struct {
	name string
	res  Result
	err  error
}

func (r stubRule) Name() string { return r.name }

func (r stubRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.res, r.err
}

func TestRulesEngineAggregatesViolations(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", res: Result{Violations: []Violation{
		{Rule: "a", Severity: SeverityWarn, Message: "warned"},
	}}})
	engine.Register(stubRule{name: "b", res: Result{Violations: []Violation{
		{Rule: "b", Severity: SeverityBlock, Message: "blocked"},
	}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(res.Violations))
	}
	if !res.HasBlocking() {
		t.Fatal("expected blocking result")
	}
}

func TestRulesEngineStopsOnRuleError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "broken", err: boom})
	engine.Register(stubRule{name: "never", res: Result{Violations: []Violation{{Rule: "never"}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("violations = %d, want 0 on error", len(res.Violations))
	}
}

func TestResultMergeAndHasBlocking(t *testing.T) {
	var res Result
	res.Merge(Result{})
	if res.Violations != nil {
		t.Fatal("merging an empty result must not allocate")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "x", Severity: SeverityLog}}})
	if res.HasBlocking() {
		t.Fatal("log severity must not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "y", Severity: SeverityBlock}}})
	if !res.HasBlocking() {
		t.Fatal("block severity must block")
	}
}
