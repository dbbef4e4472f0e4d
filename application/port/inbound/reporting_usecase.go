package inbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
	"github.com/shopspring/decimal"
)

type MonthlyOrderStat struct {
	Month          string          `json:"month"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	OrderCount     int             `json:"order_count"`
	AverageAmount  decimal.Decimal `json:"average_amount"`
	AverageQuality float64         `json:"average_quality"`
}

type Dashboard struct {
	SupplierCount      int                `json:"supplier_count"`
	BuyerCount         int                `json:"buyer_count"`
	OrderCount         int                `json:"order_count"`
	TotalOrderAmount   decimal.Decimal    `json:"total_order_amount"`
	DeliveredOrders    int                `json:"delivered_orders"`
	StatusDistribution map[string]int     `json:"status_distribution"`
	Monthly            []MonthlyOrderStat `json:"monthly"`
}

type SupplierRank struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	PerformanceRating float64 `json:"performance_rating"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type SupplierKPIs struct {
	Count               int             `json:"count"`
	AvgQualityScore     float64         `json:"avg_quality_score"`
	AvgDeliveryDays     float64         `json:"avg_delivery_days"`
	AvgComplianceRate   float64         `json:"avg_compliance_rate"`
	AvgRevenue          decimal.Decimal `json:"avg_revenue"`
	TopPerformers       []SupplierRank  `json:"top_performers"`
	QualityDistribution []HistogramBin  `json:"quality_distribution"`
}

type BuyerDetail struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	BudgetUtilization float64 `json:"budget_utilization"`
	SavingsProgress   float64 `json:"savings_progress"`
	PerformanceScore  float64 `json:"performance_score"`
	OverBudget        bool    `json:"over_budget"`
}

type BuyerKPIs struct {
	Count                int             `json:"count"`
	TotalAllocatedBudget decimal.Decimal `json:"total_allocated_budget"`
	TotalSavings         decimal.Decimal `json:"total_savings"`
	AvgPerformanceScore  float64         `json:"avg_performance_score"`
	AvgProcessingDays    float64         `json:"avg_processing_days"`
	Buyers               []BuyerDetail   `json:"buyers"`
}

type CountryPerformance struct {
	Country           string          `json:"country"`
	SupplierCount     int             `json:"supplier_count"`
	AvgQualityScore   float64         `json:"avg_quality_score"`
	AvgDeliveryDays   float64         `json:"avg_delivery_days"`
	AvgComplianceRate float64         `json:"avg_compliance_rate"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
}

// CorrelationMatrix is a square Pearson matrix; Values[i][j] relates
// Fields[i] and Fields[j].
type CorrelationMatrix struct {
	Fields []string    `json:"fields"`
	Values [][]float64 `json:"values"`
}

type ReportingUseCase interface {
	Dashboard(ctx context.Context, principal *entity.Principal) (*Dashboard, error)
	SupplierKPIs(ctx context.Context, principal *entity.Principal, filter SupplierFilter) (*SupplierKPIs, error)
	BuyerKPIs(ctx context.Context, principal *entity.Principal) (*BuyerKPIs, error)
	CountryPerformance(ctx context.Context, principal *entity.Principal) ([]CountryPerformance, error)
	Correlation(ctx context.Context, principal *entity.Principal, fields []string) (*CorrelationMatrix, error)
	MonthlyOrders(ctx context.Context, principal *entity.Principal) ([]MonthlyOrderStat, error)
}
