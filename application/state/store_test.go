package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	loaded  *outbound.Snapshot
	report  outbound.LoadReport
	loadErr error
	saveErr error
	saved   []*outbound.Snapshot
}

func (f *fakeSnapshots) Load(context.Context) (*outbound.Snapshot, outbound.LoadReport, error) {
	if f.loadErr != nil {
		return nil, outbound.LoadReport{}, f.loadErr
	}
	if f.loaded == nil {
		return &outbound.Snapshot{}, f.report, nil
	}
	return f.loaded, f.report, nil
}

func (f *fakeSnapshots) Save(_ context.Context, s *outbound.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func TestOpen_MissingTablesStartEmpty(t *testing.T) {
	snaps := &fakeSnapshots{report: outbound.LoadReport{Missing: []string{outbound.TableSuppliers, outbound.TableAudit}}}

	store, err := Open(context.Background(), snaps, logger.NewNopLogger())
	require.NoError(t, err)

	store.View(func(st *State) {
		assert.Zero(t, st.Suppliers.Len())
		assert.Zero(t, st.Audit.Len())
	})
}

func TestOpen_LoadFailure(t *testing.T) {
	snaps := &fakeSnapshots{loadErr: errors.New("permission denied")}

	_, err := Open(context.Background(), snaps, logger.NewNopLogger())
	assert.True(t, apperr.HasCode(err, apperr.ErrCodePersistence))
}

func TestRunInTransaction_CommitsAfterSave(t *testing.T) {
	snaps := &fakeSnapshots{}
	store, err := Open(context.Background(), snaps, logger.NewNopLogger())
	require.NoError(t, err)

	err = store.RunInTransaction(context.Background(), func(tx *State) error {
		tx.Orders.Insert(entity.NewOrder(tx.Orders.NextID(), "F001", "A001", time.Now()))
		return nil
	})
	require.NoError(t, err)

	require.Len(t, snaps.saved, 1)
	assert.Len(t, snaps.saved[0].Orders, 1)
	assert.Equal(t, 1, snaps.saved[0].Sequences[outbound.TableOrders])
	store.View(func(st *State) { assert.Equal(t, 1, st.Orders.Len()) })
}

func TestRunInTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("callback error", func(t *testing.T) {
		snaps := &fakeSnapshots{}
		store, err := Open(ctx, snaps, logger.NewNopLogger())
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.RunInTransaction(ctx, func(tx *State) error {
			tx.Buyers.Insert(entity.NewBuyer(tx.Buyers.NextID(), "x", "", time.Now()))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, snaps.saved)
		store.View(func(st *State) {
			assert.Zero(t, st.Buyers.Len())
			assert.Zero(t, st.Buyers.Sequence())
		})
	})

	t.Run("save error", func(t *testing.T) {
		snaps := &fakeSnapshots{saveErr: errors.New("read-only file system")}
		store, err := Open(ctx, snaps, logger.NewNopLogger())
		require.NoError(t, err)

		err = store.RunInTransaction(ctx, func(tx *State) error {
			tx.Audit.Append(time.Now(), "admin", "Création commande", entity.AuditTableOrders, "C0001", "")
			return nil
		})
		assert.True(t, apperr.HasCode(err, apperr.ErrCodePersistence))
		store.View(func(st *State) { assert.Zero(t, st.Audit.Len()) })
	})
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	snaps := &fakeSnapshots{}
	store, err := Open(context.Background(), snaps, logger.NewNopLogger())
	require.NoError(t, err)

	snaps.loaded = &outbound.Snapshot{
		Suppliers: []entity.Supplier{entity.NewSupplier("F004", "Externe", time.Now())},
	}
	require.NoError(t, store.Reload(context.Background()))

	store.View(func(st *State) {
		assert.Equal(t, 1, st.Suppliers.Len())
		assert.Equal(t, 4, st.Suppliers.Sequence())
	})
}
