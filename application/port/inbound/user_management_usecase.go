package inbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
)

type UserListItem struct {
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	LastLogin   string   `json:"last_login,omitempty"`
}

type ListUsersResponse struct {
	Users []UserListItem `json:"users"`
	Total int            `json:"total"`
}

// CreateUserRequest adds or replaces an account. Permissions accept the
// canonical names as well as the legacy French tokens.
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required"`
	Password    string   `json:"password" validate:"required,min=6"`
	FullName    string   `json:"full_name" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
}

type UserManagementUseCase interface {
	ListUsers(ctx context.Context, principal *entity.Principal) (*ListUsersResponse, error)
	GetUserDetail(ctx context.Context, principal *entity.Principal, username string) (*UserListItem, error)
	// CreateUser is for administrative tooling and is not gated.
	CreateUser(ctx context.Context, req CreateUserRequest) error
}
