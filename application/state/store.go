package state

import (
	"context"
	"sync"

	"github.com/gudson/kpi/application/port/outbound"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
)

// Store owns the process-wide record state. Mutations run through
// RunInTransaction, which only swaps in the new state after it has been
// persisted, so a storage failure never leaves memory ahead of disk.
type Store struct {
	mu        sync.RWMutex
	current   *State
	snapshots outbound.SnapshotStore
	logger    logger.Logger
}

// Open loads durable state. Missing tables are logged and start empty.
func Open(ctx context.Context, snapshots outbound.SnapshotStore, log logger.Logger) (*Store, error) {
	s := &Store{snapshots: snapshots, logger: log}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory state with what durable storage holds.
func (s *Store) Reload(ctx context.Context) error {
	snap, report, err := s.snapshots.Load(ctx)
	if err != nil {
		return apperr.ErrPersistence("load", err)
	}
	for _, table := range report.Missing {
		s.logger.Warn(ctx, "Durable table missing, starting empty", map[string]interface{}{
			"table": table,
			"code":  apperr.ErrCodeMissingStorage,
		})
	}
	st := FromSnapshot(snap)

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()

	s.logger.Info(ctx, "Record state loaded", map[string]interface{}{
		"suppliers": st.Suppliers.Len(),
		"buyers":    st.Buyers.Len(),
		"orders":    st.Orders.Len(),
		"audit":     st.Audit.Len(),
	})
	return nil
}

// View runs fn against the committed state. fn must not mutate it.
func (s *Store) View(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.current)
}

// RunInTransaction runs fn on a private clone of the state. If fn succeeds
// the clone is persisted and then committed; any error discards it.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.current.Clone()
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, tx.Snapshot()); err != nil {
		s.logger.Error(ctx, "Failed to persist record state", err, nil)
		return apperr.ErrPersistence("save", err)
	}
	s.current = tx
	return nil
}
