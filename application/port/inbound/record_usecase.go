package inbound

import (
	"context"
	"time"

	"github.com/gudson/kpi/domain/entity"
	"github.com/shopspring/decimal"
)

// Supplier

type SupplierFilter struct {
	Category string `json:"category,omitempty"`
	Country  string `json:"country,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (f SupplierFilter) Match(s entity.Supplier) bool {
	return (f.Category == "" || s.Category == f.Category) &&
		(f.Country == "" || s.Country == f.Country) &&
		(f.Status == "" || string(s.Status) == f.Status)
}

type CreateSupplierRequest struct {
	Name             string          `json:"name" validate:"required"`
	Category         string          `json:"category"`
	Country          string          `json:"country"`
	Email            string          `json:"email" validate:"omitempty,email"`
	Phone            string          `json:"phone"`
	QualityScore     float64         `json:"quality_score" validate:"gte=0,lte=10"`
	AvgDeliveryDays  float64         `json:"avg_delivery_days" validate:"gte=0"`
	ComplianceRate   float64         `json:"compliance_rate" validate:"gte=0,lte=100"`
	AvgOrderPrice    decimal.Decimal `json:"avg_order_price" validate:"gte=0"`
	OrderCount       int             `json:"order_count" validate:"gte=0"`
	TotalRevenue     decimal.Decimal `json:"total_revenue" validate:"gte=0"`
	Certification    string          `json:"certification"`
	PaymentTermsDays int             `json:"payment_terms_days" validate:"gte=0"`
}

// UpdateSupplierRequest only carries the fields to change; nil means untouched.
type UpdateSupplierRequest struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Category          *string          `json:"category,omitempty"`
	Country           *string          `json:"country,omitempty"`
	Email             *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone             *string          `json:"phone,omitempty"`
	QualityScore      *float64         `json:"quality_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	AvgDeliveryDays   *float64         `json:"avg_delivery_days,omitempty" validate:"omitempty,gte=0"`
	ComplianceRate    *float64         `json:"compliance_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	AvgOrderPrice     *decimal.Decimal `json:"avg_order_price,omitempty" validate:"omitempty,gte=0"`
	OrderCount        *int             `json:"order_count,omitempty" validate:"omitempty,gte=0"`
	TotalRevenue      *decimal.Decimal `json:"total_revenue,omitempty" validate:"omitempty,gte=0"`
	Status            *string          `json:"status,omitempty"`
	PerformanceRating *float64         `json:"performance_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Certification     *string          `json:"certification,omitempty"`
	PaymentTermsDays  *int             `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0"`
	AccountOwner      *string          `json:"account_owner,omitempty"`
}

type SupplierUseCase interface {
	List(ctx context.Context, principal *entity.Principal, filter SupplierFilter) ([]entity.Supplier, error)
	Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Supplier, error)
	Create(ctx context.Context, principal *entity.Principal, req CreateSupplierRequest) (string, error)
	Update(ctx context.Context, principal *entity.Principal, selector string, req UpdateSupplierRequest) error
	Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error)
}

// Buyer

type BuyerFilter struct {
	Department string `json:"department,omitempty"`
	Status     string `json:"status,omitempty"`
}

func (f BuyerFilter) Match(b entity.Buyer) bool {
	return (f.Department == "" || b.Department == f.Department) &&
		(f.Status == "" || string(b.Status) == f.Status)
}

type CreateBuyerRequest struct {
	Name            string          `json:"name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Department      string          `json:"department"`
	Specialty       string          `json:"specialty"`
	AllocatedBudget decimal.Decimal `json:"allocated_budget" validate:"gte=0"`
	SavingsTarget   decimal.Decimal `json:"savings_target" validate:"gte=0"`
	Certification   string          `json:"certification"`
	Status          string          `json:"status"`
}

type UpdateBuyerRequest struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Email             *string          `json:"email,omitempty" validate:"omitempty,email"`
	Department        *string          `json:"department,omitempty"`
	Specialty         *string          `json:"specialty,omitempty"`
	AllocatedBudget   *decimal.Decimal `json:"allocated_budget,omitempty" validate:"omitempty,gte=0"`
	UsedBudget        *decimal.Decimal `json:"used_budget,omitempty" validate:"omitempty,gte=0"`
	OrderCount        *int             `json:"order_count,omitempty" validate:"omitempty,gte=0"`
	OrderValue        *decimal.Decimal `json:"order_value,omitempty" validate:"omitempty,gte=0"`
	SavingsRealized   *decimal.Decimal `json:"savings_realized,omitempty" validate:"omitempty,gte=0"`
	SavingsRate       *float64         `json:"savings_rate,omitempty"`
	AvgProcessingDays *float64         `json:"avg_processing_days,omitempty" validate:"omitempty,gte=0"`
	PerformanceScore  *float64         `json:"performance_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	SavingsTarget     *decimal.Decimal `json:"savings_target,omitempty" validate:"omitempty,gte=0"`
	Status            *string          `json:"status,omitempty"`
	Certification     *string          `json:"certification,omitempty"`
	SuppliersManaged  *int             `json:"suppliers_managed,omitempty" validate:"omitempty,gte=0"`
	ManagerRating     *float64         `json:"manager_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

type BuyerUseCase interface {
	List(ctx context.Context, principal *entity.Principal, filter BuyerFilter) ([]entity.Buyer, error)
	Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Buyer, error)
	Create(ctx context.Context, principal *entity.Principal, req CreateBuyerRequest) (string, error)
	Update(ctx context.Context, principal *entity.Principal, selector string, req UpdateBuyerRequest) error
	Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error)
}

// Order

type OrderFilter struct {
	SupplierID string    `json:"supplier_id,omitempty"`
	BuyerID    string    `json:"buyer_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
}

// Match keeps orders placed on a day in [From, To]. Both bounds are whole
// days and inclusive; zero bounds are open.
func (f OrderFilter) Match(o entity.Order) bool {
	if f.SupplierID != "" && o.SupplierID != f.SupplierID {
		return false
	}
	if f.BuyerID != "" && o.BuyerID != f.BuyerID {
		return false
	}
	if f.Status != "" && string(o.Status) != f.Status {
		return false
	}
	if !f.From.IsZero() && o.OrderedOn.Before(entity.TruncateDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !o.OrderedOn.Before(entity.TruncateDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

type CreateOrderRequest struct {
	SupplierID  string          `json:"supplier_id" validate:"required"`
	BuyerID     string          `json:"buyer_id" validate:"required"`
	OrderedOn   *time.Time      `json:"ordered_on,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"gte=0"`
	Status      string          `json:"status"`
	QualityNote float64         `json:"quality_note" validate:"gte=0,lte=10"`
}

type UpdateOrderRequest struct {
	SupplierID  *string          `json:"supplier_id,omitempty" validate:"omitempty,min=1"`
	BuyerID     *string          `json:"buyer_id,omitempty" validate:"omitempty,min=1"`
	OrderedOn   *time.Time       `json:"ordered_on,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Status      *string          `json:"status,omitempty"`
	QualityNote *float64         `json:"quality_note,omitempty" validate:"omitempty,gte=0,lte=10"`
}

type OrderUseCase interface {
	List(ctx context.Context, principal *entity.Principal, filter OrderFilter) ([]entity.Order, error)
	Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Order, error)
	Create(ctx context.Context, principal *entity.Principal, req CreateOrderRequest) (string, error)
	Update(ctx context.Context, principal *entity.Principal, selector string, req UpdateOrderRequest) error
	Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error)
}
