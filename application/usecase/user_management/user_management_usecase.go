package user_management

import (
	"context"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/validator"
)

type UserManagementUseCaseImpl struct {
	createUserUseCase    *CreateUserUseCase
	getUserDetailUseCase *GetUserDetailUseCase
	listUsersUseCase     *ListUsersUseCase
}

func NewUserManagementUseCase(
	credentials outbound.CredentialStore,
	passwordSvc outbound.PasswordService,
	gate *authorization.Gate,
	log logger.Logger,
) inbound.UserManagementUseCase {
	return &UserManagementUseCaseImpl{
		createUserUseCase:    NewCreateUserUseCase(credentials, passwordSvc, validator.New(), log),
		getUserDetailUseCase: NewGetUserDetailUseCase(credentials, gate),
		listUsersUseCase:     NewListUsersUseCase(credentials, gate),
	}
}

func (uc *UserManagementUseCaseImpl) CreateUser(ctx context.Context, req inbound.CreateUserRequest) error {
	return uc.createUserUseCase.Execute(ctx, req)
}

func (uc *UserManagementUseCaseImpl) GetUserDetail(ctx context.Context, principal *entity.Principal, username string) (*inbound.UserListItem, error) {
	return uc.getUserDetailUseCase.Execute(ctx, principal, username)
}

func (uc *UserManagementUseCaseImpl) ListUsers(ctx context.Context, principal *entity.Principal) (*inbound.ListUsersResponse, error) {
	return uc.listUsersUseCase.Execute(ctx, principal)
}

// toListItem never copies the password hash.
func toListItem(c *entity.Credential) inbound.UserListItem {
	perms := c.Permissions.Slice()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return inbound.UserListItem{
		Username:    c.Username,
		FullName:    c.FullName,
		Email:       c.Email,
		Role:        string(c.Role),
		Permissions: names,
		LastLogin:   c.LastLogin,
	}
}
