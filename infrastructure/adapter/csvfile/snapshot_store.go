package csvfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gudson/kpi/application/port/outbound"
)

// File names of the durable tables under the data directory.
const (
	SuppliersFile = "fournisseurs_data.csv"
	BuyersFile    = "acheteurs_data.csv"
	OrdersFile    = "commandes_data.csv"
	AuditFile     = "historique_data.csv"
	SequencesFile = "sequences.csv"
)

// Store keeps every table in its own CSV file. Saves write each file to a
// temporary sibling and rename it into place, so a reader never observes a
// half-written table.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

var _ outbound.SnapshotStore = (*Store)(nil)

func (s *Store) Load(ctx context.Context) (*outbound.Snapshot, outbound.LoadReport, error) {
	var (
		snap   outbound.Snapshot
		report outbound.LoadReport
		err    error
	)
	if snap.Suppliers, err = readTable(s.path(SuppliersFile), supplierSchema, outbound.TableSuppliers, &report); err != nil {
		return nil, report, err
	}
	if snap.Buyers, err = readTable(s.path(BuyersFile), buyerSchema, outbound.TableBuyers, &report); err != nil {
		return nil, report, err
	}
	if snap.Orders, err = readTable(s.path(OrdersFile), orderSchema, outbound.TableOrders, &report); err != nil {
		return nil, report, err
	}
	if snap.Audit, err = readTable(s.path(AuditFile), auditSchema, outbound.TableAudit, &report); err != nil {
		return nil, report, err
	}

	// a missing sequences file is normal for data written by older versions
	seqRows, err := readTable(s.path(SequencesFile), sequenceSchema, "", nil)
	if err != nil {
		return nil, report, err
	}
	snap.Sequences = outbound.Sequences{}
	for _, r := range seqRows {
		snap.Sequences[r.table] = r.value
	}
	return &snap, report, nil
}

func (s *Store) Save(ctx context.Context, snap *outbound.Snapshot) error {
	files := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{SuppliersFile, func(w io.Writer) error { return supplierSchema.encode(w, snap.Suppliers) }},
		{BuyersFile, func(w io.Writer) error { return buyerSchema.encode(w, snap.Buyers) }},
		{OrdersFile, func(w io.Writer) error { return orderSchema.encode(w, snap.Orders) }},
		{AuditFile, func(w io.Writer) error { return auditSchema.encode(w, snap.Audit) }},
		{SequencesFile, func(w io.Writer) error { return sequenceSchema.encode(w, sequenceRows(snap.Sequences)) }},
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := f.encode(&buf); err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := writeFileAtomic(s.path(f.name), buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func readTable[T any](path string, sc schema[T], table string, report *outbound.LoadReport) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if report != nil {
			report.Missing = append(report.Missing, table)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	rows, err := sc.decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func sequenceRows(seq outbound.Sequences) []sequenceRow {
	tables := []string{outbound.TableSuppliers, outbound.TableBuyers, outbound.TableOrders, outbound.TableAudit}
	rows := make([]sequenceRow, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, sequenceRow{table: t, value: seq[t]})
	}
	return rows
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
