// Package bootstrap opens the adapters selected by configuration. It is shared
// by the server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/gudson/kpi/application/port/outbound"
	blobfs "github.com/gudson/kpi/infrastructure/adapter/blob/fs"
	blobs3 "github.com/gudson/kpi/infrastructure/adapter/blob/s3"
	"github.com/gudson/kpi/infrastructure/adapter/csvfile"
	"github.com/gudson/kpi/infrastructure/adapter/jsonfile"
	"github.com/gudson/kpi/infrastructure/adapter/postgres"
	"github.com/gudson/kpi/infrastructure/adapter/sqlite"
	"github.com/gudson/kpi/infrastructure/config"
)

// Closer releases whatever an Open* function acquired.
type Closer func() error

func noClose() error { return nil }

// OpenSnapshotStore opens the record storage for driver, which is usually
// cfg.StorageDriver. The migrate command passes other drivers to copy data.
func OpenSnapshotStore(ctx context.Context, cfg *config.Config, driver string) (outbound.SnapshotStore, Closer, error) {
	switch driver {
	case config.StorageDriverCSV:
		store, err := csvfile.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv storage: %w", err)
		}
		return store, noClose, nil
	case config.StorageDriverSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, config.ErrMissingDatabaseURL
		}
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewSnapshotStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, config.ErrInvalidStorageDriver
}

func OpenCredentialStore(ctx context.Context, cfg *config.Config) (outbound.CredentialStore, Closer, error) {
	switch cfg.CredentialsDriver {
	case config.CredentialsDriverJSON:
		return jsonfile.NewCredentialStore(cfg.CredentialsFile), noClose, nil
	case config.CredentialsDriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewCredentialStoreAdapter(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	}
	return nil, nil, config.ErrInvalidCredentialsDriver
}

// OpenBlobStore returns the destination of published exports and the key
// prefix to publish under.
func OpenBlobStore(ctx context.Context, cfg *config.Config) (outbound.BlobStore, string, error) {
	switch cfg.ExportDriver {
	case config.ExportDriverFS:
		store, err := blobfs.New(cfg.ExportDir)
		if err != nil {
			return nil, "", fmt.Errorf("open export dir: %w", err)
		}
		return store, "", nil
	case config.ExportDriverS3:
		store, err := blobs3.New(ctx, blobs3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open s3 exports: %w", err)
		}
		return store, "exports", nil
	}
	return nil, "", config.ErrInvalidExportDriver
}
