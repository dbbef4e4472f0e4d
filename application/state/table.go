package state

import (
	"github.com/gudson/kpi/domain/valueobject"
)

// Record is a row that carries its own identifier.
type Record interface {
	Key() string
}

// Table holds the rows of one entity type in insertion order together with
// the last issued sequence number. Rows are stored by value, so callers
// always work on copies.
type Table[T Record] struct {
	format valueobject.IDFormat
	rows   []T
	seq    int
}

// NewTable builds a table from loaded rows. When seq is behind the highest
// id suffix present (legacy data without a persisted counter), the counter
// is moved up to that suffix so new ids never collide with old ones.
func NewTable[T Record](format valueobject.IDFormat, rows []T, seq int) *Table[T] {
	t := &Table[T]{
		format: format,
		rows:   append([]T(nil), rows...),
		seq:    seq,
	}
	for _, r := range t.rows {
		if n, ok := format.Parse(r.Key()); ok && n > t.seq {
			t.seq = n
		}
	}
	return t
}

// NextID reserves and returns the next identifier. Reserved numbers are
// never handed out again, even if the row is later deleted.
func (t *Table[T]) NextID() string {
	t.seq++
	return t.format.Format(t.seq)
}

func (t *Table[T]) Sequence() int { return t.seq }

func (t *Table[T]) Len() int { return len(t.rows) }

func (t *Table[T]) Insert(row T) {
	t.rows = append(t.rows, row)
}

// All returns a copy of every row in insertion order.
func (t *Table[T]) All() []T {
	return append([]T(nil), t.rows...)
}

// Filter returns the rows matching keep, in insertion order. A nil keep
// matches everything.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	if keep == nil {
		return t.All()
	}
	out := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Indexes returns the positions of the rows matching match.
func (t *Table[T]) Indexes(match func(T) bool) []int {
	var idx []int
	for i, r := range t.rows {
		if match(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (t *Table[T]) At(i int) T { return t.rows[i] }

func (t *Table[T]) Replace(i int, row T) { t.rows[i] = row }

// RemoveWhere deletes every matching row and returns how many were removed.
func (t *Table[T]) RemoveWhere(match func(T) bool) int {
	kept := t.rows[:0:0]
	removed := 0
	for _, r := range t.rows {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return removed
}

func (t *Table[T]) Clone() *Table[T] {
	return &Table[T]{
		format: t.format,
		rows:   append([]T(nil), t.rows...),
		seq:    t.seq,
	}
}
