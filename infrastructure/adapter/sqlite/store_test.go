package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/infrastructure/adapter/sqlstate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) func() *sqlstate.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "kpi.db")
	return func() *sqlstate.Store {
		s, err := NewStore(context.Background(), path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}
}

func TestStore_EmptyDatabaseReportsEveryTableMissing(t *testing.T) {
	open := openStore(t)
	store := open()

	snap, report, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		outbound.TableSuppliers, outbound.TableBuyers, outbound.TableOrders, outbound.TableAudit,
	}, report.Missing)
	assert.Empty(t, snap.Suppliers)
	assert.NotNil(t, snap.Sequences)
}

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	open := openStore(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	supplier := entity.NewSupplier("F002", "Acme", day)
	supplier.TotalRevenue = decimal.RequireFromString("125000.50")
	order := entity.NewOrder("C0001", "F002", "A001", day)
	order.Status = entity.OrderStatusDelivered
	order.TotalAmount = decimal.RequireFromString("1999.99")

	require.NoError(t, open().Save(ctx, &outbound.Snapshot{
		Suppliers: []entity.Supplier{supplier},
		Orders:    []entity.Order{order},
		Audit: []entity.AuditEntry{{
			ID: "H0001", Timestamp: day, Actor: "admin", Action: "Création fournisseur",
			Table: entity.AuditTableSuppliers, RecordID: "F002",
		}},
		Sequences: outbound.Sequences{outbound.TableSuppliers: 5},
	}))

	snap, report, err := open().Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Missing)
	require.Len(t, snap.Suppliers, 1)
	assert.Equal(t, "Acme", snap.Suppliers[0].Name)
	assert.True(t, snap.Suppliers[0].TotalRevenue.Equal(supplier.TotalRevenue))
	assert.True(t, snap.Suppliers[0].CreatedOn.Equal(day))
	assert.Empty(t, snap.Buyers)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, entity.OrderStatusDelivered, snap.Orders[0].Status)
	require.Len(t, snap.Audit, 1)
	assert.Equal(t, "H0001", snap.Audit[0].ID)
	assert.Equal(t, 5, snap.Sequences[outbound.TableSuppliers])
}

func TestStore_SaveOverwritesPreviousSnapshot(t *testing.T) {
	open := openStore(t)
	store := open()
	ctx := context.Background()
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &outbound.Snapshot{
		Suppliers: []entity.Supplier{entity.NewSupplier("F001", "A", day), entity.NewSupplier("F002", "B", day)},
	}))
	require.NoError(t, store.Save(ctx, &outbound.Snapshot{
		Suppliers: []entity.Supplier{entity.NewSupplier("F002", "B", day)},
	}))

	snap, _, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Suppliers, 1)
	assert.Equal(t, "F002", snap.Suppliers[0].ID)
}
