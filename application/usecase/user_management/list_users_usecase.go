package user_management

import (
	"context"
	"fmt"
	"sort"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

type ListUsersUseCase struct {
	credentials outbound.CredentialStore
	gate        *authorization.Gate
}

func NewListUsersUseCase(credentials outbound.CredentialStore, gate *authorization.Gate) *ListUsersUseCase {
	return &ListUsersUseCase{
		credentials: credentials,
		gate:        gate,
	}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, principal *entity.Principal) (*inbound.ListUsersResponse, error) {
	if err := uc.gate.Require(ctx, principal, entity.PermissionManageUsers); err != nil {
		return nil, err
	}

	creds, err := uc.credentials.List(ctx)
	if err != nil {
		return nil, apperr.ErrInternalServerError("failed to list users", fmt.Errorf("list credentials: %w", err))
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].Username < creds[j].Username })

	// Convert to response DTOs
	items := make([]inbound.UserListItem, len(creds))
	for i, c := range creds {
		items[i] = toListItem(c)
	}

	return &inbound.ListUsersResponse{
		Users: items,
		Total: len(items),
	}, nil
}
