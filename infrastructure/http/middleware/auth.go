package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/infrastructure/http/response"
)

type contextKey string

const (
	principalKey contextKey = "auth_principal"
	tokenKey     contextKey = "auth_token"
)

type AuthMiddleware struct {
	auth inbound.AuthUseCase
}

func NewAuthMiddleware(auth inbound.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// RequireAuth resolves the bearer token to its session principal.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			response.Unauthorized(w, "Token cannot be empty")
			return
		}

		principal, err := m.auth.Resolve(r.Context(), token)
		if err != nil {
			response.FromError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal returns the principal set by RequireAuth, or nil.
func GetPrincipal(ctx context.Context) *entity.Principal {
	if p, ok := ctx.Value(principalKey).(*entity.Principal); ok {
		return p
	}
	return nil
}

func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithPrincipal is used by handler tests to skip token resolution.
func WithPrincipal(ctx context.Context, p *entity.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
