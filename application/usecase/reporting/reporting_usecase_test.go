package reporting

import (
	"context"
	"testing"

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

func newUseCase(t *testing.T, snap *outbound.Snapshot) *ReportingUseCase {
	t.Helper()
	store, err := state.Open(context.Background(), staticSnapshots{snap: snap}, logger.NewNopLogger())
	require.NoError(t, err)
	return NewReportingUseCase(store, authorization.NewGate(logger.NewNopLogger()), logger.NewNopLogger())
}

func TestReportingUseCase_RequiresRead(t *testing.T) {
	uc := newUseCase(t, &outbound.Snapshot{})
	ctx := context.Background()
	nobody := entity.NewPrincipal("nobody", "", "", entity.RoleAdmin)

	_, err := uc.Dashboard(ctx, nobody)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
	_, err = uc.SupplierKPIs(ctx, nobody, inbound.SupplierFilter{})
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
	_, err = uc.BuyerKPIs(ctx, nobody)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
	_, err = uc.CountryPerformance(ctx, nobody)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
	_, err = uc.Correlation(ctx, nobody, nil)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
	_, err = uc.MonthlyOrders(ctx, nil)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeForbidden))
}

func TestReportingUseCase_SupplierFilter(t *testing.T) {
	snap := &outbound.Snapshot{Suppliers: []entity.Supplier{
		supplier("F001", "France", 8, 4, 90, 8, 100),
		supplier("F002", "Italie", 6, 8, 70, 6, 100),
	}}
	uc := newUseCase(t, snap)
	reader := entity.NewPrincipal("consultant1", "", "", entity.RoleConsultant, entity.PermissionRead)

	k, err := uc.SupplierKPIs(context.Background(), reader, inbound.SupplierFilter{Country: "Italie"})
	require.NoError(t, err)
	assert.Equal(t, 1, k.Count)
	assert.Equal(t, 6.0, k.AvgQualityScore)

	d, err := uc.Dashboard(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, 2, d.SupplierCount)

	m, err := uc.Correlation(context.Background(), reader, []string{"quality_score", "compliance_rate"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)

	_, err = uc.MonthlyOrders(context.Background(), reader)
	require.NoError(t, err)
}
