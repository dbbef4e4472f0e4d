package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by every stored table.
const DateLayout = "2006-01-02"

type SupplierStatus string

const (
	SupplierStatusActive          SupplierStatus = "Actif"
	SupplierStatusUnderEvaluation SupplierStatus = "En_Evaluation"
	SupplierStatusSuspended       SupplierStatus = "Suspendu"
)

func (s SupplierStatus) Valid() bool {
	switch s {
	case SupplierStatusActive, SupplierStatusUnderEvaluation, SupplierStatusSuspended:
		return true
	}
	return false
}

// Supplier is one row of the Fournisseurs table.
type Supplier struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Country           string          `json:"country"`
	CreatedOn         time.Time       `json:"created_on"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	QualityScore      float64         `json:"quality_score"`
	AvgDeliveryDays   float64         `json:"avg_delivery_days"`
	ComplianceRate    float64         `json:"compliance_rate"`
	AvgOrderPrice     decimal.Decimal `json:"avg_order_price"`
	OrderCount        int             `json:"order_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	Status            SupplierStatus  `json:"status"`
	PerformanceRating float64         `json:"performance_rating"`
	Certification     string          `json:"certification"`
	PaymentTermsDays  int             `json:"payment_terms_days"`
	AccountOwner      string          `json:"account_owner"`
}

// NewSupplier returns a supplier in its initial state: every numeric field
// at zero and status under evaluation.
func NewSupplier(id, name string, now time.Time) Supplier {
	return Supplier{
		ID:            id,
		Name:          name,
		CreatedOn:     TruncateDay(now),
		AvgOrderPrice: decimal.Zero,
		TotalRevenue:  decimal.Zero,
		Status:        SupplierStatusUnderEvaluation,
	}
}

func (s Supplier) Key() string { return s.ID }

// TruncateDay drops the time of day; dates are stored as DateLayout.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
