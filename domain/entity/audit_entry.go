package entity

import "time"

// AuditTimestampLayout is the stored format of AuditEntry.Timestamp.
const AuditTimestampLayout = "2006-01-02 15:04:05"

// Audit table names as they appear in the trail.
const (
	AuditTableSuppliers = "Fournisseurs"
	AuditTableBuyers    = "Acheteurs"
	AuditTableOrders    = "Commandes"
)

// AuditEntry is an immutable record of one mutation.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Table     string    `json:"table"`
	RecordID  string    `json:"record_id"`
	Field     string    `json:"field,omitempty"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

func (e AuditEntry) Key() string { return e.ID }
