package audit

import (
	"context"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

const maxLimit = 500

// AuditUseCase exposes the mutation history to user managers.
type AuditUseCase struct {
	store *state.Store
	gate  *authorization.Gate
}

func NewAuditUseCase(store *state.Store, gate *authorization.Gate) *AuditUseCase {
	return &AuditUseCase{store: store, gate: gate}
}

var _ inbound.AuditUseCase = (*AuditUseCase)(nil)

// Query returns entries most recent first. A zero limit means the default
// of 20.
func (uc *AuditUseCase) Query(ctx context.Context, principal *entity.Principal, q inbound.AuditQuery) ([]entity.AuditEntry, error) {
	if err := uc.gate.Require(ctx, principal, entity.PermissionManageUsers); err != nil {
		return nil, err
	}
	if q.Limit < 0 || q.Limit > maxLimit {
		return nil, apperr.ErrValidation("limit must be between 0 and 500")
	}

	var out []entity.AuditEntry
	uc.store.View(func(st *state.State) {
		out = st.Audit.Query(q.Actor, q.Limit)
	})
	return out, nil
}

func (uc *AuditUseCase) Actors(ctx context.Context, principal *entity.Principal) ([]string, error) {
	if err := uc.gate.Require(ctx, principal, entity.PermissionManageUsers); err != nil {
		return nil, err
	}
	var out []string
	uc.store.View(func(st *state.State) {
		out = st.Audit.Actors()
	})
	return out, nil
}
