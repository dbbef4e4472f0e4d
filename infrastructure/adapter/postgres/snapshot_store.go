// Package postgres holds the PostgreSQL adapters: the user accounts table and
// the record snapshot buckets.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/gudson/kpi/infrastructure/adapter/sqlstate"
)

// Open connects and pings the database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewSnapshotStore(ctx context.Context, db *sql.DB) (*sqlstate.Store, error) {
	return sqlstate.New(ctx, db, sqlstate.Postgres)
}
