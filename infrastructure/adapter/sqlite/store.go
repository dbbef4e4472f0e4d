package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gudson/kpi/infrastructure/adapter/sqlstate"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPath = "gudson_kpi.db"

// NewStore opens (or creates) the database file and returns a snapshot
// store over it.
func NewStore(ctx context.Context, path string) (*sqlstate.Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	store, err := sqlstate.New(ctx, db, sqlstate.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
