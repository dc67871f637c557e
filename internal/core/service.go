// Package core implements the fleet service layer: the public operation set
// over the persistent store, derived analytics, scheduling, financial
// reporting, and the default rule policies.
package core

import (
	"context"
	"time"

	"matatucore/internal/blob"
	"matatucore/internal/infra/persistence/memory"
)

// Service exposes the transactional fleet operations.
type Service struct {
	store   PersistentStore
	logger  Logger
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	archive blob.Store
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger injects a structured logger. Nil restores the no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l == nil {
			l = noopLogger{}
		}
		s.logger = l
	}
}

// WithClock injects the clock used for audit timestamps.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c == nil {
			c = ClockFunc(func() time.Time { return time.Now().UTC() })
		}
		s.clock = c
	}
}

// WithAuditRecorder wires an audit sink for operation outcomes.
func WithAuditRecorder(r AuditRecorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithMetricsRecorder wires a metrics sink for operation outcomes.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithTracer wires a tracer around operations.
func WithTracer(t Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithReportArchive wires a blob store receiving generated financial reports.
func WithReportArchive(store blob.Store) Option {
	return func(s *Service) { s.archive = store }
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		clock:  ClockFunc(func() time.Time { return time.Now().UTC() }),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service with an in-memory store and the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// run executes fn in a store transaction wrapped with tracing, metrics,
// audit, and violation logging. entityID is read after fn completes so
// operations can report the identifier they created.
func (s *Service) run(ctx context.Context, operation string, entityID *ID, fn func(tx Transaction) error) (Result, error) {
	start := time.Now()
	span := TraceSpan(noopSpan{})
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := time.Since(start)
	span.End(err)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	var id ID
	if entityID != nil {
		id = *entityID
	}
	s.recordAudit(ctx, operation, id, duration, err)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
		return res, err
	}
	s.logViolations(operation, res)
	s.logger.Debug("operation committed", "operation", operation, "entity_id", id)
	return res, nil
}

// view executes fn against a read-only snapshot with tracing and metrics.
func (s *Service) view(ctx context.Context, operation string, fn func(view TransactionView) error) error {
	start := time.Now()
	span := TraceSpan(noopSpan{})
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	err := s.store.View(ctx, fn)
	duration := time.Since(start)
	span.End(err)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if err != nil {
		s.logger.Error("query failed", "operation", operation, "error", err)
	}
	return err
}
