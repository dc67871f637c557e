package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"matatucore/pkg/domain"
)

// stubConn is an in-memory database/sql driver recording executed statements
// and holding snapshot bucket payloads.
type stubConn struct {
	mu       sync.Mutex
	execs    []string
	buckets  map[string][]byte
	failExec bool
}

type stubDriver struct{ conn *stubConn }

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{buckets: map[string][]byte{}}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported")
}
func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failExec {
		return nil, fmt.Errorf("exec failed")
	}
	c.execs = append(c.execs, query)
	if strings.HasPrefix(query, "INSERT INTO state") && len(args) == 2 {
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(query, "FROM state") {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	rows := &stubRows{}
	for bucket, payload := range c.buckets {
		rows.entries = append(rows.entries, [2]any{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	entries [][2]any
	pos     int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.entries) {
		return io.EOF
	}
	dest[0] = r.entries[r.pos][0]
	dest[1] = r.entries[r.pos][1]
	r.pos++
	return nil
}

func (c *stubConn) seedBucket(t *testing.T, bucket string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal %s: %v", bucket, err)
	}
	c.mu.Lock()
	c.buckets[bucket] = data
	c.mu.Unlock()
}

func TestNewStoreHydratesFromSnapshotTable(t *testing.T) {
	db, conn := newStubDB()
	conn.seedBucket(t, "sequence", uint64(9))
	conn.seedBucket(t, "saccos", map[domain.ID]domain.Sacco{
		3: {Base: domain.Base{ID: 3}, Name: "Kitengela Shuttle", Location: "Kitengela"},
	})

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	saccos := store.ListSaccos()
	if len(saccos) != 1 || saccos[0].Name != "Kitengela Shuttle" {
		t.Fatalf("snapshot not hydrated: %+v", saccos)
	}

	var driverID domain.ID
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		created, err := tx.CreateDriver(domain.Driver{SaccoID: 3, Name: "Njeri", LicenseNumber: "DL-7", Contact: "0755"})
		if err != nil {
			return err
		}
		driverID = created.ID
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if driverID != 10 {
		t.Fatalf("restored sequence ignored: got %d, want 10", driverID)
	}
}

func TestRunInTransactionPersistsBuckets(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateSacco(domain.Sacco{Name: "Umoja SACCO", Location: "Eastlands"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	conn.mu.Lock()
	payload := conn.buckets["saccos"]
	seq := conn.buckets["sequence"]
	conn.mu.Unlock()
	if payload == nil {
		t.Fatalf("saccos bucket not persisted; buckets: %v", conn.buckets)
	}
	var saccos map[domain.ID]domain.Sacco
	if err := json.Unmarshal(payload, &saccos); err != nil {
		t.Fatalf("decode persisted saccos: %v", err)
	}
	if len(saccos) != 1 || saccos[1].Name != "Umoja SACCO" {
		t.Fatalf("unexpected persisted saccos: %+v", saccos)
	}
	var nextID uint64
	if err := json.Unmarshal(seq, &nextID); err != nil {
		t.Fatalf("decode persisted sequence: %v", err)
	}
	if nextID != 1 {
		t.Fatalf("sequence bucket = %d, want 1", nextID)
	}
}

func TestPersistFailureSurfacesError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.mu.Lock()
	conn.failExec = true
	conn.mu.Unlock()

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateSacco(domain.Sacco{Name: "Ghost"})
		return err
	}); err == nil {
		t.Fatalf("expected persist failure to surface")
	}
}
