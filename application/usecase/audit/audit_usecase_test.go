package audit

import (
	"context"
	"testing"
	"time"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSnapshots struct {
	snap *outbound.Snapshot
}

func (s staticSnapshots) Load(context.Context) (*outbound.Snapshot, outbound.LoadReport, error) {
	return s.snap, outbound.LoadReport{}, nil
}

func (staticSnapshots) Save(context.Context, *outbound.Snapshot) error { return nil }

func newUseCase(t *testing.T) *AuditUseCase {
	t.Helper()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	snap := &outbound.Snapshot{Audit: []entity.AuditEntry{
		{ID: "H0001", Timestamp: at, Actor: "admin", Action: "Création fournisseur", Table: entity.AuditTableSuppliers, RecordID: "F001"},
		{ID: "H0002", Timestamp: at, Actor: "acheteur1", Action: "Création commande", Table: entity.AuditTableOrders, RecordID: "C0001"},
		{ID: "H0003", Timestamp: at, Actor: "admin", Action: "Suppression fournisseur", Table: entity.AuditTableSuppliers, RecordID: "F001"},
	}}
	store, err := state.Open(context.Background(), staticSnapshots{snap: snap}, logger.NewNopLogger())
	require.NoError(t, err)
	return NewAuditUseCase(store, authorization.NewGate(logger.NewNopLogger()))
}

var manager = entity.NewPrincipal("admin", "Administrateur", "", entity.RoleAdmin,
	entity.PermissionRead, entity.PermissionManageUsers)

func TestQuery(t *testing.T) {
	uc := newUseCase(t)

	all, err := uc.Query(context.Background(), manager, inbound.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "H0003", all[0].ID)

	mine, err := uc.Query(context.Background(), manager, inbound.AuditQuery{Actor: "admin", Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "H0003", mine[0].ID)

	_, err = uc.Query(context.Background(), manager, inbound.AuditQuery{Limit: -1})
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeValidation))
}

func TestActors(t *testing.T) {
	uc := newUseCase(t)

	actors, err := uc.Actors(context.Background(), manager)
	require.NoError(t, err)
	assert.Equal(t, []string{"acheteur1", "admin"}, actors)
}

func TestRequiresManageUsers(t *testing.T) {
	uc := newUseCase(t)
	reader := entity.NewPrincipal("consultant1", "", "", entity.RoleConsultant, entity.PermissionRead)

	_, err := uc.Query(context.Background(), reader, inbound.AuditQuery{})
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))

	_, err = uc.Actors(context.Background(), reader)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
}
