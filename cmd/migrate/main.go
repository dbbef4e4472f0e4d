package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/infrastructure/adapter/jsonfile"
	"github.com/gudson/kpi/infrastructure/bootstrap"
	"github.com/gudson/kpi/infrastructure/config"
	"github.com/gudson/kpi/infrastructure/service/password"
)

func main() {
	mode := flag.String("mode", "hash-passwords", "migration mode: hash-passwords or copy")
	from := flag.String("from", config.StorageDriverCSV, "copy: source storage driver")
	to := flag.String("to", config.StorageDriverSQLite, "copy: destination storage driver")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadTooling()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "hash-passwords":
		n, err := hashLegacyPasswords(ctx, jsonfile.NewCredentialStore(cfg.CredentialsFile), password.NewBcryptPasswordService(cfg.BcryptCost))
		if err != nil {
			log.Fatalf("hashing passwords failed: %v", err)
		}
		log.Printf("Hashed %d legacy password(s) in %s", n, cfg.CredentialsFile)
	case "copy":
		report, err := copyTables(ctx, cfg, *from, *to)
		if err != nil {
			log.Fatalf("copy failed: %v", err)
		}
		log.Println(report)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

// legacyStore is the part of the JSON credential store this tool needs.
type legacyStore interface {
	outbound.CredentialStore
	LegacyPasswords(ctx context.Context) (map[string]string, error)
}

// hashLegacyPasswords replaces every plaintext password with its bcrypt hash.
func hashLegacyPasswords(ctx context.Context, store legacyStore, hasher outbound.PasswordService) (int, error) {
	legacy, err := store.LegacyPasswords(ctx)
	if err != nil {
		return 0, err
	}
	for username, plain := range legacy {
		cred, err := store.FindByUsername(ctx, username)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", username, err)
		}
		hash, err := hasher.HashPassword(plain)
		if err != nil {
			return 0, fmt.Errorf("hash %s: %w", username, err)
		}
		cred.UpdatePassword(hash)
		if err := store.Save(ctx, cred); err != nil {
			return 0, fmt.Errorf("save %s: %w", username, err)
		}
		log.Printf("Hashed password of %s", username)
	}
	return len(legacy), nil
}

func copyTables(ctx context.Context, cfg *config.Config, from, to string) (string, error) {
	if from == to {
		return "", fmt.Errorf("source and destination are both %s", from)
	}
	src, closeSrc, err := bootstrap.OpenSnapshotStore(ctx, cfg, from)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", from, err)
	}
	defer closeSrc()
	dst, closeDst, err := bootstrap.OpenSnapshotStore(ctx, cfg, to)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", to, err)
	}
	defer closeDst()

	return copySnapshot(ctx, src, dst)
}

func copySnapshot(ctx context.Context, src, dst outbound.SnapshotStore) (string, error) {
	snap, report, err := src.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load: %w", err)
	}
	for _, table := range report.Missing {
		log.Printf("Source table %s missing, copying it empty", table)
	}
	if err := dst.Save(ctx, snap); err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	return fmt.Sprintf("Copied %d suppliers, %d buyers, %d orders, %d audit entries",
		len(snap.Suppliers), len(snap.Buyers), len(snap.Orders), len(snap.Audit)), nil
}
