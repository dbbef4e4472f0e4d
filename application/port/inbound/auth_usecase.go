package inbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/domain/valueobject"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PrincipalView is the client-facing shape of a principal.
type PrincipalView struct {
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	LastLogin   string   `json:"last_login,omitempty"`
}

func NewPrincipalView(p *entity.Principal) PrincipalView {
	perms := p.Permissions()
	names := make([]string, len(perms))
	for i, perm := range perms {
		names[i] = string(perm)
	}
	return PrincipalView{
		Username:    p.Username,
		FullName:    p.FullName,
		Email:       p.Email,
		Role:        string(p.Role),
		Permissions: names,
		LastLogin:   p.LastLogin,
	}
}

type LoginResponse struct {
	Token *valueobject.SessionToken `json:"token"`
	User  PrincipalView             `json:"user"`
}

type AuthUseCase interface {
	Authenticate(ctx context.Context, username, password string) (*entity.Principal, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*entity.Principal, error)
}
