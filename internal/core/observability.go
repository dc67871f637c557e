package core

import (
	"context"
	"log/slog"
	"time"

	"matatucore/pkg/domain"
)

// Logger is the minimal structured logging surface consumed by the service.
// Args are alternating key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewSlogLogger adapts a *slog.Logger to the service Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

type slogLogger struct{ l *slog.Logger }

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// Clock abstracts wall-clock reads so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// AuditStatus labels the outcome of an audited operation.
type AuditStatus string

const (
	// AuditStatusSuccess marks a committed operation.
	AuditStatusSuccess AuditStatus = "success"
	// AuditStatusError marks a failed operation.
	AuditStatusError AuditStatus = "error"
)

// AuditEntry captures one service operation outcome for audit sinks.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  ID
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries for completed operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes per-operation outcomes and latency.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// auditMetadata maps operation names to the entity and action they touch.
// Operations absent from this table produce no audit entries.
var auditMetadata = map[string]struct {
	Entity EntityType
	Action Action
}{
	"create_sacco":              {EntitySacco, ActionCreate},
	"register_matatu":           {EntityMatatu, ActionCreate},
	"register_driver":           {EntityDriver, ActionCreate},
	"assign_driver_to_matatu":   {EntityDriver, ActionUpdate},
	"start_trip":                {EntityTrip, ActionCreate},
	"end_trip":                  {EntityTrip, ActionUpdate},
	"record_maintenance":        {EntityMaintenance, ActionCreate},
	"record_fuel":               {EntityFuel, ActionCreate},
	"record_expense":            {EntityExpense, ActionCreate},
	"record_revenue":            {EntityRevenue, ActionCreate},
	"create_route":              {EntityRoute, ActionCreate},
	"submit_feedback":           {EntityFeedback, ActionCreate},
	"create_automated_schedule": {EntitySchedule, ActionCreate},
	"update_location":           {EntityLocationUpdate, ActionCreate},
	"generate_financial_report": {EntityFinancialReport, ActionCreate},
}

func (s *Service) recordAudit(ctx context.Context, operation string, entityID ID, duration time.Duration, err error) {
	if s.audit == nil {
		return
	}
	meta, ok := auditMetadata[operation]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: operation,
		Entity:    meta.Entity,
		Action:    meta.Action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// logViolations surfaces non-blocking rule findings through the logger so
// warn-severity results are not silently dropped.
func (s *Service) logViolations(operation string, res Result) {
	for _, v := range res.Violations {
		switch v.Severity {
		case domain.SeverityWarn:
			s.logger.Warn("rule violation", "operation", operation, "rule", v.Rule, "message", v.Message)
		case domain.SeverityLog:
			s.logger.Info("rule violation", "operation", operation, "rule", v.Rule, "message", v.Message)
		}
	}
}
