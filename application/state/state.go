package state

import (
	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/domain/valueobject"
)

// State is the in-memory copy of every record table. A State handed to a
// transaction is private to it until the store commits it.
type State struct {
	Suppliers *Table[entity.Supplier]
	Buyers    *Table[entity.Buyer]
	Orders    *Table[entity.Order]
	Audit     *AuditLog
}

func NewState() *State {
	return FromSnapshot(&outbound.Snapshot{})
}

// FromSnapshot builds state from durable data, seeding missing counters.
func FromSnapshot(s *outbound.Snapshot) *State {
	seq := s.Sequences
	if seq == nil {
		seq = outbound.Sequences{}
	}
	return &State{
		Suppliers: NewTable(valueobject.SupplierIDFormat, s.Suppliers, seq[outbound.TableSuppliers]),
		Buyers:    NewTable(valueobject.BuyerIDFormat, s.Buyers, seq[outbound.TableBuyers]),
		Orders:    NewTable(valueobject.OrderIDFormat, s.Orders, seq[outbound.TableOrders]),
		Audit:     NewAuditLog(s.Audit, seq[outbound.TableAudit]),
	}
}

func (s *State) Snapshot() *outbound.Snapshot {
	return &outbound.Snapshot{
		Suppliers: s.Suppliers.All(),
		Buyers:    s.Buyers.All(),
		Orders:    s.Orders.All(),
		Audit:     s.Audit.Entries(),
		Sequences: outbound.Sequences{
			outbound.TableSuppliers: s.Suppliers.Sequence(),
			outbound.TableBuyers:    s.Buyers.Sequence(),
			outbound.TableOrders:    s.Orders.Sequence(),
			outbound.TableAudit:     s.Audit.Sequence(),
		},
	}
}

func (s *State) Clone() *State {
	return &State{
		Suppliers: s.Suppliers.Clone(),
		Buyers:    s.Buyers.Clone(),
		Orders:    s.Orders.Clone(),
		Audit:     s.Audit.Clone(),
	}
}
