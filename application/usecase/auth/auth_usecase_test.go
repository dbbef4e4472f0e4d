package auth

import (
	"context"
	"testing"
	"time"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/jwt"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubCredentialStore struct {
	users map[string]*entity.Credential
}

func (s *stubCredentialStore) FindByUsername(_ context.Context, username string) (*entity.Credential, error) {
	if c, ok := s.users[username]; ok {
		return c, nil
	}
	return nil, outbound.ErrCredentialNotFound
}

func (s *stubCredentialStore) List(context.Context) ([]*entity.Credential, error) {
	out := make([]*entity.Credential, 0, len(s.users))
	for _, c := range s.users {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCredentialStore) Save(_ context.Context, c *entity.Credential) error {
	s.users[c.Username] = c
	return nil
}

type mockRateLimit struct {
	mock.Mock
}

func (m *mockRateLimit) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockRateLimit) Increment(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *mockRateLimit) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return m.Called(ctx, key, duration, reason).Error(0)
}

func (m *mockRateLimit) IsBlocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockRateLimit) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type noLimit struct{}

func (noLimit) CheckLimit(context.Context, string, int, time.Duration) (bool, error) { return true, nil }
func (noLimit) Increment(context.Context, string, time.Duration) error               { return nil }
func (noLimit) Block(context.Context, string, time.Duration, string) error           { return nil }
func (noLimit) IsBlocked(context.Context, string) (bool, error)                      { return false, nil }
func (noLimit) Reset(context.Context, string) error                                  { return nil }

func newTestUseCase(t *testing.T, limiter outbound.RateLimitService) (*AuthUseCase, *SessionRegistry) {
	t.Helper()
	passwords := password.NewBcryptPasswordService(4)
	hash, err := passwords.HashPassword("admin123")
	require.NoError(t, err)

	admin := entity.NewCredential("admin", "Administrateur", "admin@gudson.com", entity.RoleAdmin, hash,
		entity.PermissionRead, entity.PermissionWrite, entity.PermissionDelete, entity.PermissionManageUsers)
	admin.LastLogin = "2024-01-15 10:30:00"
	store := &stubCredentialStore{users: map[string]*entity.Credential{"admin": admin}}

	tokens, err := jwt.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	sessions := NewSessionRegistry()
	uc := NewAuthUseCase(store, passwords, tokens, limiter, sessions, nil, logger.NewNopLogger(), DefaultLoginPolicy)
	return uc, sessions
}

func TestAuthenticate(t *testing.T) {
	uc, _ := newTestUseCase(t, noLimit{})
	ctx := context.Background()

	t.Run("success returns stored record", func(t *testing.T) {
		p, err := uc.Authenticate(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin", p.Username)
		assert.Equal(t, "Administrateur", p.FullName)
		assert.Equal(t, "admin@gudson.com", p.Email)
		assert.Equal(t, entity.RoleAdmin, p.Role)
		assert.True(t, p.HasPermission(entity.PermissionManageUsers))
		assert.Equal(t, "2024-01-15 10:30:00", p.LastLogin)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "ghost", "whatever")
		assert.True(t, apperr.HasCode(err, apperr.ErrCodeUnknownUser))
	})

	t.Run("bad credential", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "admin", "admin124")
		assert.True(t, apperr.HasCode(err, apperr.ErrCodeBadCredential))
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "admin", "")
		assert.True(t, apperr.HasCode(err, apperr.ErrCodeValidation))
	})
}

func TestAuthenticate_RateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked username is rejected before lookup", func(t *testing.T) {
		limiter := new(mockRateLimit)
		limiter.On("IsBlocked", mock.Anything, "login:admin").Return(true, nil)
		uc, _ := newTestUseCase(t, limiter)

		_, err := uc.Authenticate(ctx, "admin", "admin123")
		assert.True(t, apperr.HasCode(err, apperr.ErrCodeTooManyAttempts))
		limiter.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything)
	})

	t.Run("failure over budget blocks the username", func(t *testing.T) {
		limiter := new(mockRateLimit)
		limiter.On("IsBlocked", mock.Anything, "login:admin").Return(false, nil)
		limiter.On("Increment", mock.Anything, "login:admin", DefaultLoginPolicy.Window).Return(nil)
		limiter.On("CheckLimit", mock.Anything, "login:admin", DefaultLoginPolicy.MaxAttempts, DefaultLoginPolicy.Window).Return(false, nil)
		limiter.On("Block", mock.Anything, "login:admin", DefaultLoginPolicy.BlockDuration, mock.Anything).Return(nil)
		uc, _ := newTestUseCase(t, limiter)

		_, err := uc.Authenticate(ctx, "admin", "wrong")
		assert.True(t, apperr.HasCode(err, apperr.ErrCodeBadCredential))
		limiter.AssertExpectations(t)
	})

	t.Run("success resets the counter", func(t *testing.T) {
		limiter := new(mockRateLimit)
		limiter.On("IsBlocked", mock.Anything, "login:admin").Return(false, nil)
		limiter.On("Reset", mock.Anything, "login:admin").Return(nil)
		uc, _ := newTestUseCase(t, limiter)

		_, err := uc.Authenticate(ctx, "admin", "admin123")
		require.NoError(t, err)
		limiter.AssertExpectations(t)
	})
}

func TestLoginResolveLogout(t *testing.T) {
	uc, sessions := newTestUseCase(t, noLimit{})
	ctx := context.Background()

	resp, err := uc.Login(ctx, inbound.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.NotNil(t, resp.Token)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Contains(t, resp.User.Permissions, "delete")
	assert.Equal(t, 1, sessions.Len())

	p, err := uc.Resolve(ctx, resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)

	require.NoError(t, uc.Logout(ctx, resp.Token.AccessToken))
	_, err = uc.Resolve(ctx, resp.Token.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidSession))
}

func TestResolve_InvalidToken(t *testing.T) {
	uc, _ := newTestUseCase(t, noLimit{})
	_, err := uc.Resolve(context.Background(), "not-a-token")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidSession))
}

func TestSessionRegistry_Expiry(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	p := entity.NewPrincipal("admin", "", "", entity.RoleAdmin)
	r.Open("s1", p, now.Add(time.Minute))

	got, ok := r.Get("s1")
	require.True(t, ok)
	assert.Same(t, p, got)

	now = now.Add(2 * time.Minute)
	_, ok = r.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestSessionRegistry_OpenPrunesExpired(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	p := entity.NewPrincipal("admin", "", "", entity.RoleAdmin)
	r.Open("short", p, now.Add(time.Minute))
	r.Open("long", p, now.Add(time.Hour))
	require.Equal(t, 2, r.Len())

	now = now.Add(5 * time.Minute)
	r.Open("fresh", p, now.Add(time.Hour))

	assert.Equal(t, 2, r.Len())
	_, ok := r.Get("long")
	assert.True(t, ok)
}
