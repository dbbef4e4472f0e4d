package user_management

import (
	"context"
	"errors"
	"fmt"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

type GetUserDetailUseCase struct {
	credentials outbound.CredentialStore
	gate        *authorization.Gate
}

func NewGetUserDetailUseCase(credentials outbound.CredentialStore, gate *authorization.Gate) *GetUserDetailUseCase {
	return &GetUserDetailUseCase{
		credentials: credentials,
		gate:        gate,
	}
}

func (uc *GetUserDetailUseCase) Execute(ctx context.Context, principal *entity.Principal, username string) (*inbound.UserListItem, error) {
	if err := uc.gate.Require(ctx, principal, entity.PermissionManageUsers); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, apperr.ErrMissingField("username")
	}

	cred, err := uc.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, outbound.ErrCredentialNotFound) {
			return nil, apperr.ErrNotFound("users", username)
		}
		return nil, apperr.ErrInternalServerError("failed to find user", fmt.Errorf("find credential: %w", err))
	}

	item := toListItem(cred)
	return &item, nil
}
