package state

import (
	"sort"
	"time"

	"github.com/gudson/kpi/domain/entity"
	"github.com/gudson/kpi/domain/valueobject"
)

// DefaultAuditLimit caps audit queries that do not ask for a limit.
const DefaultAuditLimit = 20

// Change describes a field-level modification recorded with an audit entry.
type Change struct {
	Field    string
	OldValue string
	NewValue string
}

// AuditLog is the append-only history of mutations. Entries are never
// modified or removed once appended.
type AuditLog struct {
	table *Table[entity.AuditEntry]
}

func NewAuditLog(entries []entity.AuditEntry, seq int) *AuditLog {
	return &AuditLog{table: NewTable(valueobject.AuditIDFormat, entries, seq)}
}

func (l *AuditLog) Append(at time.Time, actor, action, table, recordID, comment string) entity.AuditEntry {
	return l.AppendChange(at, actor, action, table, recordID, Change{}, comment)
}

func (l *AuditLog) AppendChange(at time.Time, actor, action, table, recordID string, change Change, comment string) entity.AuditEntry {
	entry := entity.AuditEntry{
		ID:        l.table.NextID(),
		Timestamp: at,
		Actor:     actor,
		Action:    action,
		Table:     table,
		RecordID:  recordID,
		Field:     change.Field,
		OldValue:  change.OldValue,
		NewValue:  change.NewValue,
		Comment:   comment,
	}
	l.table.Insert(entry)
	return entry
}

func (l *AuditLog) Len() int { return l.table.Len() }

func (l *AuditLog) Sequence() int { return l.table.Sequence() }

// Entries returns every entry in append order.
func (l *AuditLog) Entries() []entity.AuditEntry { return l.table.All() }

// Query returns entries most recent first, optionally restricted to one
// actor. limit <= 0 means DefaultAuditLimit.
func (l *AuditLog) Query(actor string, limit int) []entity.AuditEntry {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	out := make([]entity.AuditEntry, 0, limit)
	for i := l.table.Len() - 1; i >= 0 && len(out) < limit; i-- {
		e := l.table.At(i)
		if actor != "" && e.Actor != actor {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Actors lists every distinct actor, sorted.
func (l *AuditLog) Actors() []string {
	seen := make(map[string]struct{})
	for _, e := range l.table.rows {
		seen[e.Actor] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (l *AuditLog) Clone() *AuditLog {
	return &AuditLog{table: l.table.Clone()}
}
