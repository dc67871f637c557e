// Package sqlite persists the in-memory fleet state to a single SQLite table
// as JSON snapshot buckets. Every successful transaction rewrites the
// affected buckets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"matatucore/internal/infra/persistence/memory"
	"matatucore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

type (
	// Snapshot aliases the canonical state snapshot.
	Snapshot = memory.Snapshot
	// RulesEngine aliases domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// Result aliases domain.Result.
	Result = domain.Result
)

// Store wraps the in-memory store and snapshots its state to SQLite after
// every successful transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *RulesEngine) (*Store, error) {
	if path == "" {
		path = "matatucore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

type bucketRef struct {
	name  string
	value any
}

// bucketRefs enumerates the persisted snapshot buckets. The sequence bucket
// must load alongside the tables or restored stores would re-issue
// identifiers.
func bucketRefs(s *Snapshot) []bucketRef {
	return []bucketRef{
		{"sequence", &s.NextID},
		{"saccos", &s.Saccos},
		{"matatus", &s.Matatus},
		{"drivers", &s.Drivers},
		{"trips", &s.Trips},
		{"maintenance", &s.Maintenance},
		{"driver_performance", &s.Performance},
		{"expenses", &s.Expenses},
		{"revenues", &s.Revenues},
		{"fuel", &s.Fuel},
		{"routes", &s.Routes},
		{"feedback", &s.Feedback},
		{"schedules", &s.Schedules},
		{"locations", &s.Locations},
		{"reports", &s.Reports},
	}
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	payloads := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(payloads) == 0 {
		return nil
	}
	var snapshot Snapshot
	for _, ref := range bucketRefs(&snapshot) {
		payload, ok := payloads[ref.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, ref.value); err != nil {
			return fmt.Errorf("decode %s: %w", ref.name, err)
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, ref := range bucketRefs(&snapshot) {
		data, err := json.Marshal(ref.value)
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", ref.name, err)
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, ref.name, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", ref.name, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite if the transaction committed.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
