// Package jsonfile stores user accounts in users_db.json, a JSON object keyed
// by username.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
)

const DefaultFile = "users_db.json"

type userRecord struct {
	FullName     string     `json:"nom_complet"`
	Role         string     `json:"role"`
	Email        string     `json:"email"`
	Permissions  []string   `json:"permissions"`
	LastLogin    string     `json:"derniere_connexion"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Password     string     `json:"password,omitempty"` // legacy plaintext, cleared by migrate
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// CredentialStore re-reads the file on every lookup so edits made by the CLI
// tools are picked up without a restart.
type CredentialStore struct {
	path string
	mu   sync.Mutex
}

var _ outbound.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore(path string) *CredentialStore {
	if path == "" {
		path = DefaultFile
	}
	return &CredentialStore{path: path}
}

func (s *CredentialStore) Path() string { return s.path }

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	rec, ok := records[username]
	if !ok {
		return nil, outbound.ErrCredentialNotFound
	}
	return rec.credential(username), nil
}

func (s *CredentialStore) List(_ context.Context) ([]*entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Credential, 0, len(records))
	for _, username := range sortedKeys(records) {
		out = append(out, records[username].credential(username))
	}
	return out, nil
}

// Save adds or replaces one account. Any legacy plaintext password on that
// account is dropped.
func (s *CredentialStore) Save(_ context.Context, credential *entity.Credential) error {
	if credential == nil || credential.Username == "" {
		return fmt.Errorf("credential username is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records[credential.Username] = fromCredential(credential)
	return s.write(records)
}

// LegacyPasswords returns the plaintext passwords of accounts that were never
// hashed, keyed by username.
func (s *CredentialStore) LegacyPasswords(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for username, rec := range records {
		if rec.PasswordHash == "" && rec.Password != "" {
			out[username] = rec.Password
		}
	}
	return out, nil
}

func (s *CredentialStore) read() (map[string]userRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]userRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	records := map[string]userRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return records, nil
}

func (s *CredentialStore) write(records map[string]userRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create dirs: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (r userRecord) credential(username string) *entity.Credential {
	c := &entity.Credential{
		Username:     username,
		FullName:     r.FullName,
		Email:        r.Email,
		Role:         entity.Role(r.Role),
		Permissions:  entity.NewPermissionSet(),
		PasswordHash: r.PasswordHash,
		LastLogin:    r.LastLogin,
	}
	for _, token := range r.Permissions {
		if p, ok := entity.ParsePermission(token); ok {
			c.Permissions[p] = struct{}{}
		}
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		c.UpdatedAt = *r.UpdatedAt
	}
	return c
}

func fromCredential(c *entity.Credential) userRecord {
	perms := c.Permissions.Slice()
	rec := userRecord{
		FullName:     c.FullName,
		Role:         string(c.Role),
		Email:        c.Email,
		Permissions:  make([]string, len(perms)),
		LastLogin:    c.LastLogin,
		PasswordHash: c.PasswordHash,
	}
	for i, p := range perms {
		rec.Permissions[i] = string(p)
	}
	if !c.CreatedAt.IsZero() {
		created := c.CreatedAt
		rec.CreatedAt = &created
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		rec.UpdatedAt = &updated
	}
	return rec
}

func sortedKeys(records map[string]userRecord) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
