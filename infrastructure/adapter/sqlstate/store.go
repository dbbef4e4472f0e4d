// Package sqlstate persists record snapshots in a single SQL table of JSON
// buckets. The sqlite and postgres adapters share it and differ only in
// their Dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gudson/kpi/application/port/outbound"
)

// Dialect holds the statements that differ between drivers.
type Dialect struct {
	Name        string
	CreateTable string
	Upsert      string
}

var SQLite = Dialect{
	Name: "sqlite",
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
}

var Postgres = Dialect{
	Name: "postgres",
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
}

const bucketSequences = "sequences"

var recordBuckets = []string{
	outbound.TableSuppliers,
	outbound.TableBuyers,
	outbound.TableOrders,
	outbound.TableAudit,
}

var allBuckets = append(append([]string{}, recordBuckets...), bucketSequences)

// Store implements outbound.SnapshotStore over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

var _ outbound.SnapshotStore = (*Store)(nil)

// New ensures the state table exists.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) Load(ctx context.Context) (*outbound.Snapshot, outbound.LoadReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, outbound.LoadReport{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := &outbound.Snapshot{Sequences: outbound.Sequences{}}
	targets := map[string]any{
		outbound.TableSuppliers: &snapshot.Suppliers,
		outbound.TableBuyers:    &snapshot.Buyers,
		outbound.TableOrders:    &snapshot.Orders,
		outbound.TableAudit:     &snapshot.Audit,
		bucketSequences:         &snapshot.Sequences,
	}
	seen := make(map[string]bool, len(targets))
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, outbound.LoadReport{}, fmt.Errorf("scan state: %w", err)
		}
		target, ok := targets[bucket]
		if !ok {
			continue
		}
		seen[bucket] = true
		if len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return nil, outbound.LoadReport{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, outbound.LoadReport{}, fmt.Errorf("iterate state: %w", err)
	}
	if snapshot.Sequences == nil {
		snapshot.Sequences = outbound.Sequences{}
	}

	var report outbound.LoadReport
	for _, bucket := range recordBuckets {
		if !seen[bucket] {
			report.Missing = append(report.Missing, bucket)
		}
	}
	return snapshot, report, nil
}

// Save writes every bucket in one transaction.
func (s *Store) Save(ctx context.Context, snapshot *outbound.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloads, err := encodeBuckets(snapshot)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range allBuckets {
		if _, err := tx.ExecContext(ctx, s.dialect.Upsert, bucket, string(payloads[bucket])); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func encodeBuckets(snapshot *outbound.Snapshot) (map[string][]byte, error) {
	values := map[string]any{
		outbound.TableSuppliers: nonNil(snapshot.Suppliers),
		outbound.TableBuyers:    nonNil(snapshot.Buyers),
		outbound.TableOrders:    nonNil(snapshot.Orders),
		outbound.TableAudit:     nonNil(snapshot.Audit),
		bucketSequences:         snapshot.Sequences,
	}
	out := make(map[string][]byte, len(values))
	for bucket, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// nonNil keeps empty tables as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
