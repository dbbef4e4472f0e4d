package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type BuyerStatus string

const (
	BuyerStatusActive     BuyerStatus = "Actif"
	BuyerStatusInTraining BuyerStatus = "En Formation"
	BuyerStatusSenior     BuyerStatus = "Senior"
)

func (s BuyerStatus) Valid() bool {
	switch s {
	case BuyerStatusActive, BuyerStatusInTraining, BuyerStatusSenior:
		return true
	}
	return false
}

const (
	defaultBuyerProcessingDays = 5
	defaultBuyerScore          = 8.0
)

// Buyer is one row of the Acheteurs table. UsedBudget may exceed
// AllocatedBudget; reporting flags it rather than the store rejecting it.
type Buyer struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Department        string          `json:"department"`
	HiredOn           time.Time       `json:"hired_on"`
	Specialty         string          `json:"specialty"`
	AllocatedBudget   decimal.Decimal `json:"allocated_budget"`
	UsedBudget        decimal.Decimal `json:"used_budget"`
	OrderCount        int             `json:"order_count"`
	OrderValue        decimal.Decimal `json:"order_value"`
	SavingsRealized   decimal.Decimal `json:"savings_realized"`
	SavingsRate       float64         `json:"savings_rate"`
	AvgProcessingDays float64         `json:"avg_processing_days"`
	PerformanceScore  float64         `json:"performance_score"`
	SavingsTarget     decimal.Decimal `json:"savings_target"`
	Status            BuyerStatus     `json:"status"`
	Certification     string          `json:"certification"`
	SuppliersManaged  int             `json:"suppliers_managed"`
	ManagerRating     float64         `json:"manager_rating"`
}

func NewBuyer(id, name, email string, now time.Time) Buyer {
	return Buyer{
		ID:                id,
		Name:              name,
		Email:             email,
		HiredOn:           TruncateDay(now),
		AllocatedBudget:   decimal.Zero,
		UsedBudget:        decimal.Zero,
		OrderValue:        decimal.Zero,
		SavingsRealized:   decimal.Zero,
		SavingsTarget:     decimal.Zero,
		AvgProcessingDays: defaultBuyerProcessingDays,
		PerformanceScore:  defaultBuyerScore,
		ManagerRating:     defaultBuyerScore,
		Status:            BuyerStatusActive,
	}
}

func (b Buyer) Key() string { return b.ID }

// OverBudget reports whether the buyer spent more than allocated.
func (b Buyer) OverBudget() bool {
	return b.UsedBudget.GreaterThan(b.AllocatedBudget)
}
