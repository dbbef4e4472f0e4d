package user_management

import (
	"context"
	"errors"
	"testing"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCredentials struct {
	users   map[string]*entity.Credential
	saveErr error
}

func (m *memoryCredentials) FindByUsername(_ context.Context, username string) (*entity.Credential, error) {
	if c, ok := m.users[username]; ok {
		return c, nil
	}
	return nil, outbound.ErrCredentialNotFound
}

func (m *memoryCredentials) List(context.Context) ([]*entity.Credential, error) {
	out := make([]*entity.Credential, 0, len(m.users))
	for _, c := range m.users {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCredentials) Save(_ context.Context, c *entity.Credential) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[c.Username] = c
	return nil
}

var admin = entity.NewPrincipal("admin", "Administrateur", "", entity.RoleAdmin,
	entity.PermissionRead, entity.PermissionWrite, entity.PermissionManageUsers)

func newUseCase() (inbound.UserManagementUseCase, *memoryCredentials) {
	store := &memoryCredentials{users: map[string]*entity.Credential{}}
	uc := NewUserManagementUseCase(store, password.NewBcryptPasswordService(4),
		authorization.NewGate(logger.NewNopLogger()), logger.NewNopLogger())
	return uc, store
}

func TestCreateUser(t *testing.T) {
	uc, store := newUseCase()
	passwords := password.NewBcryptPasswordService(4)

	err := uc.CreateUser(context.Background(), inbound.CreateUserRequest{
		Username:    " acheteur1 ",
		Password:    "achat123",
		FullName:    "Jean Dupont",
		Email:       "Jean.Dupont@Example.com",
		Role:        "Acheteur",
		Permissions: []string{"lecture", "ecriture"},
	})
	require.NoError(t, err)

	cred := store.users["acheteur1"]
	require.NotNil(t, cred)
	assert.Equal(t, "jean.dupont@example.com", cred.Email)
	assert.Equal(t, entity.RoleBuyer, cred.Role)
	assert.Equal(t, []entity.Permission{entity.PermissionRead, entity.PermissionWrite}, cred.Permissions.Slice())
	ok, err := passwords.VerifyPassword("achat123", cred.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUser_ReplaceKeepsHistory(t *testing.T) {
	uc, store := newUseCase()
	old := entity.NewCredential("admin", "Admin", "", entity.RoleAdmin, "x")
	old.LastLogin = "2024-05-01 10:00:00"
	store.users["admin"] = old

	err := uc.CreateUser(context.Background(), inbound.CreateUserRequest{
		Username: "admin", Password: "admin123", FullName: "Administrateur", Role: "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00:00", store.users["admin"].LastLogin)
	assert.Equal(t, old.CreatedAt, store.users["admin"].CreatedAt)
}

func TestCreateUser_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  inbound.CreateUserRequest
	}{
		{name: "missing username", req: inbound.CreateUserRequest{Password: "secret1", FullName: "X", Role: "Admin"}},
		{name: "short password", req: inbound.CreateUserRequest{Username: "x", Password: "abc", FullName: "X", Role: "Admin"}},
		{name: "unknown role", req: inbound.CreateUserRequest{Username: "x", Password: "secret1", FullName: "X", Role: "Root"}},
		{name: "unknown permission", req: inbound.CreateUserRequest{
			Username: "x", Password: "secret1", FullName: "X", Role: "Admin", Permissions: []string{"everything"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newUseCase()
			err := uc.CreateUser(context.Background(), tt.req)
			assert.True(t, apperr.HasCode(err, apperr.ErrCodeValidation), "got %v", err)
			assert.Empty(t, store.users)
		})
	}
}

func TestCreateUser_SaveFailure(t *testing.T) {
	uc, store := newUseCase()
	store.saveErr = errors.New("read-only")

	err := uc.CreateUser(context.Background(), inbound.CreateUserRequest{
		Username: "x", Password: "secret1", FullName: "X", Role: "Consultant",
	})
	assert.True(t, apperr.HasCode(err, apperr.ErrCodePersistence))
}

func TestListUsers(t *testing.T) {
	uc, store := newUseCase()
	store.users["consultant1"] = entity.NewCredential("consultant1", "Marie Martin", "", entity.RoleConsultant, "hash", entity.PermissionRead)
	store.users["admin"] = entity.NewCredential("admin", "Administrateur", "", entity.RoleAdmin, "hash",
		entity.PermissionManageUsers, entity.PermissionRead)

	resp, err := uc.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "admin", resp.Users[0].Username)
	assert.Equal(t, []string{"manage_users", "read"}, resp.Users[0].Permissions)
	assert.Equal(t, "consultant1", resp.Users[1].Username)

	reader := entity.NewPrincipal("consultant1", "", "", entity.RoleConsultant, entity.PermissionRead)
	_, err = uc.ListUsers(context.Background(), reader)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
}

func TestGetUserDetail(t *testing.T) {
	uc, store := newUseCase()
	store.users["admin"] = entity.NewCredential("admin", "Administrateur", "admin@example.com", entity.RoleAdmin, "hash")

	item, err := uc.GetUserDetail(context.Background(), admin, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", item.Email)

	_, err = uc.GetUserDetail(context.Background(), admin, "ghost")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeNotFound))
}
