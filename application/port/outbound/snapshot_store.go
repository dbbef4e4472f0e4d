package outbound

import (
	"context"

	"github.com/gudson/kpi/domain/entity"
)

// Table names used by SnapshotStore implementations and in LoadReport.
const (
	TableSuppliers = "suppliers"
	TableBuyers    = "buyers"
	TableOrders    = "orders"
	TableAudit     = "audit"
)

// Sequences holds the last issued number per table. A zero or absent value
// means the table never persisted a counter.
type Sequences map[string]int

// Snapshot is the full durable state of the record tables.
type Snapshot struct {
	Suppliers []entity.Supplier
	Buyers    []entity.Buyer
	Orders    []entity.Order
	Audit     []entity.AuditEntry
	Sequences Sequences
}

// LoadReport lists the tables whose durable storage did not exist. Missing
// tables load as empty.
type LoadReport struct {
	Missing []string
}

type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, LoadReport, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}
