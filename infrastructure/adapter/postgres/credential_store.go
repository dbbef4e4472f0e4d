package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
)

const usersTableDDL = `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		permissions TEXT[] NOT NULL DEFAULT '{}',
		password_hash TEXT NOT NULL,
		last_login TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

type CredentialStoreAdapter struct {
	db *sql.DB
}

func NewCredentialStoreAdapter(ctx context.Context, db *sql.DB) (*CredentialStoreAdapter, error) {
	if _, err := db.ExecContext(ctx, usersTableDDL); err != nil {
		return nil, fmt.Errorf("ensure users table: %w", err)
	}
	return &CredentialStoreAdapter{db: db}, nil
}

var _ outbound.CredentialStore = (*CredentialStoreAdapter)(nil)

func (r *CredentialStoreAdapter) FindByUsername(ctx context.Context, username string) (*entity.Credential, error) {
	if username == "" {
		return nil, outbound.ErrCredentialNotFound
	}

	query := `
		SELECT username, full_name, email, role, permissions, password_hash, last_login, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	credential, err := scanCredential(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return credential, nil
}

func (r *CredentialStoreAdapter) List(ctx context.Context) ([]*entity.Credential, error) {
	query := `
		SELECT username, full_name, email, role, permissions, password_hash, last_login, created_at, updated_at
		FROM users
		ORDER BY username
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var out []*entity.Credential
	for rows.Next() {
		credential, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		out = append(out, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return out, nil
}

func (r *CredentialStoreAdapter) Save(ctx context.Context, credential *entity.Credential) error {
	if credential == nil {
		return fmt.Errorf("credential cannot be nil")
	}
	if credential.Username == "" || credential.PasswordHash == "" {
		return fmt.Errorf("username and password hash are required")
	}

	query := `
		INSERT INTO users (username, full_name, email, role, permissions, password_hash, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (username) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			permissions = EXCLUDED.permissions,
			password_hash = EXCLUDED.password_hash,
			last_login = EXCLUDED.last_login,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		credential.Username,
		credential.FullName,
		credential.Email,
		string(credential.Role),
		pq.Array(permissionNames(credential.Permissions)),
		credential.PasswordHash,
		credential.LastLogin,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*entity.Credential, error) {
	var (
		c     entity.Credential
		role  string
		perms []string
	)
	if err := row.Scan(
		&c.Username,
		&c.FullName,
		&c.Email,
		&role,
		pq.Array(&perms),
		&c.PasswordHash,
		&c.LastLogin,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Role = entity.Role(role)
	c.Permissions = parsePermissions(perms)
	return &c, nil
}

func permissionNames(set entity.PermissionSet) []string {
	perms := set.Slice()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// parsePermissions drops tokens it does not recognise.
func parsePermissions(tokens []string) entity.PermissionSet {
	set := entity.NewPermissionSet()
	for _, token := range tokens {
		if p, ok := entity.ParsePermission(token); ok {
			set[p] = struct{}{}
		}
	}
	return set
}
