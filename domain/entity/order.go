package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "En cours"
	OrderStatusDelivered OrderStatus = "Livrée"
	OrderStatusCancelled OrderStatus = "Annulée"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is one row of the Commandes table. SupplierID and BuyerID are not
// checked against the other tables.
type Order struct {
	ID          string          `json:"id"`
	SupplierID  string          `json:"supplier_id"`
	BuyerID     string          `json:"buyer_id"`
	OrderedOn   time.Time       `json:"ordered_on"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	QualityNote float64         `json:"quality_note"`
}

func NewOrder(id, supplierID, buyerID string, now time.Time) Order {
	return Order{
		ID:          id,
		SupplierID:  supplierID,
		BuyerID:     buyerID,
		OrderedOn:   TruncateDay(now),
		TotalAmount: decimal.Zero,
		Status:      OrderStatusPending,
	}
}

func (o Order) Key() string { return o.ID }
