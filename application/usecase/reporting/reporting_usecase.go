package reporting

import (
	"context"
	"time"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

// ReportingUseCase serves read-only aggregates over the committed state.
type ReportingUseCase struct {
	store  *state.Store
	gate   *authorization.Gate
	logger logger.Logger
}

func NewReportingUseCase(store *state.Store, gate *authorization.Gate, log logger.Logger) *ReportingUseCase {
	return &ReportingUseCase{store: store, gate: gate, logger: log}
}

var _ inbound.ReportingUseCase = (*ReportingUseCase)(nil)

// view runs fn on the committed state once the principal may read.
func (uc *ReportingUseCase) view(ctx context.Context, principal *entity.Principal, report string, fn func(*state.State)) error {
	if err := uc.gate.Require(ctx, principal, entity.PermissionRead); err != nil {
		return err
	}
	start := time.Now()
	uc.store.View(fn)
	logger.LogPerformance(ctx, uc.logger, "report."+report, time.Since(start), nil)
	return nil
}

func (uc *ReportingUseCase) Dashboard(ctx context.Context, principal *entity.Principal) (*inbound.Dashboard, error) {
	var out inbound.Dashboard
	err := uc.view(ctx, principal, "dashboard", func(st *state.State) {
		out = SummarizeDashboard(st.Suppliers.All(), st.Buyers.All(), st.Orders.All())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *ReportingUseCase) SupplierKPIs(ctx context.Context, principal *entity.Principal, filter inbound.SupplierFilter) (*inbound.SupplierKPIs, error) {
	var out inbound.SupplierKPIs
	err := uc.view(ctx, principal, "suppliers", func(st *state.State) {
		out = SummarizeSuppliers(st.Suppliers.Filter(filter.Match))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *ReportingUseCase) BuyerKPIs(ctx context.Context, principal *entity.Principal) (*inbound.BuyerKPIs, error) {
	var out inbound.BuyerKPIs
	err := uc.view(ctx, principal, "buyers", func(st *state.State) {
		out = SummarizeBuyers(st.Buyers.All())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *ReportingUseCase) CountryPerformance(ctx context.Context, principal *entity.Principal) ([]inbound.CountryPerformance, error) {
	var out []inbound.CountryPerformance
	err := uc.view(ctx, principal, "countries", func(st *state.State) {
		out = GroupByCountry(st.Suppliers.All())
	})
	return out, err
}

func (uc *ReportingUseCase) Correlation(ctx context.Context, principal *entity.Principal, fields []string) (*inbound.CorrelationMatrix, error) {
	var (
		out     inbound.CorrelationMatrix
		corrErr error
	)
	err := uc.view(ctx, principal, "correlation", func(st *state.State) {
		out, corrErr = Correlate(st.Suppliers.All(), fields)
	})
	if err != nil {
		return nil, err
	}
	if corrErr != nil {
		return nil, corrErr
	}
	return &out, nil
}

func (uc *ReportingUseCase) MonthlyOrders(ctx context.Context, principal *entity.Principal) ([]inbound.MonthlyOrderStat, error) {
	var out []inbound.MonthlyOrderStat
	err := uc.view(ctx, principal, "monthly", func(st *state.State) {
		out = GroupByMonth(st.Orders.All())
	})
	return out, err
}
