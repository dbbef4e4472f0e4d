package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gudson/kpi/domain/entity"
	"github.com/shopspring/decimal"
)

// column maps one CSV header to a struct field.
type column[T any] struct {
	name string
	get  func(*T) string
	set  func(*T, string) error
}

type schema[T any] []column[T]

func (s schema[T]) header() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.name
	}
	return out
}

func (s schema[T]) encode(w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.header()); err != nil {
		return err
	}
	record := make([]string, len(s))
	for i := range rows {
		for j, c := range s {
			record[j] = c.get(&rows[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decode reads rows by header name. Columns absent from the file keep their
// zero value; unknown columns are ignored.
func (s schema[T]) decode(r io.Reader) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	var rows []T
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var row T
		for _, c := range s {
			i, ok := pos[c.name]
			if !ok || i >= len(record) {
				continue
			}
			if err := c.set(&row, strings.TrimSpace(record[i])); err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, c.name, err)
			}
		}
		rows = append(rows, row)
	}
}

func text[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set:  func(r *T, v string) error { *field(r) = v; return nil },
	}
}

func number[T any](name string, field func(*T) *float64) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.FormatFloat(*field(r), 'f', -1, 64) },
		set: func(r *T, v string) error {
			if v == "" {
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			*field(r) = f
			return err
		},
	}
}

// integer accepts "12" as well as "12.0", which spreadsheet tools write back.
func integer[T any](name string, field func(*T) *int) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.Itoa(*field(r)) },
		set: func(r *T, v string) error {
			if v == "" {
				return nil
			}
			if n, err := strconv.Atoi(v); err == nil {
				*field(r) = n
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(r) = int(f)
			return nil
		},
	}
}

func money[T any](name string, field func(*T) *decimal.Decimal) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return field(r).String() },
		set: func(r *T, v string) error {
			if v == "" {
				*field(r) = decimal.Zero
				return nil
			}
			d, err := decimal.NewFromString(v)
			*field(r) = d
			return err
		},
	}
}

func timestamp[T any](name, layout string, field func(*T) *time.Time) column[T] {
	return column[T]{
		name: name,
		get: func(r *T) string {
			if field(r).IsZero() {
				return ""
			}
			return field(r).Format(layout)
		},
		set: func(r *T, v string) error {
			if v == "" {
				return nil
			}
			t, err := time.ParseInLocation(layout, v, time.Local)
			*field(r) = t
			return err
		},
	}
}

func enum[T any, E ~string](name string, field func(*T) *E) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return string(*field(r)) },
		set:  func(r *T, v string) error { *field(r) = E(v); return nil },
	}
}

var supplierSchema = schema[entity.Supplier]{
	text("ID_Fournisseur", func(s *entity.Supplier) *string { return &s.ID }),
	text("Nom_Fournisseur", func(s *entity.Supplier) *string { return &s.Name }),
	text("Categorie", func(s *entity.Supplier) *string { return &s.Category }),
	text("Pays", func(s *entity.Supplier) *string { return &s.Country }),
	timestamp("Date_Creation", entity.DateLayout, func(s *entity.Supplier) *time.Time { return &s.CreatedOn }),
	text("Contact_Email", func(s *entity.Supplier) *string { return &s.Email }),
	text("Telephone", func(s *entity.Supplier) *string { return &s.Phone }),
	number("Score_Qualite", func(s *entity.Supplier) *float64 { return &s.QualityScore }),
	number("Delai_Moyen_Livraison", func(s *entity.Supplier) *float64 { return &s.AvgDeliveryDays }),
	number("Taux_Conformite", func(s *entity.Supplier) *float64 { return &s.ComplianceRate }),
	money("Prix_Moyen_Commande", func(s *entity.Supplier) *decimal.Decimal { return &s.AvgOrderPrice }),
	integer("Nombre_Commandes", func(s *entity.Supplier) *int { return &s.OrderCount }),
	money("CA_Total", func(s *entity.Supplier) *decimal.Decimal { return &s.TotalRevenue }),
	enum("Statut", func(s *entity.Supplier) *entity.SupplierStatus { return &s.Status }),
	number("Note_Performance", func(s *entity.Supplier) *float64 { return &s.PerformanceRating }),
	text("Certification_ISO", func(s *entity.Supplier) *string { return &s.Certification }),
	integer("Delai_Paiement", func(s *entity.Supplier) *int { return &s.PaymentTermsDays }),
	text("Responsable_Compte", func(s *entity.Supplier) *string { return &s.AccountOwner }),
}

var buyerSchema = schema[entity.Buyer]{
	text("ID_Acheteur", func(b *entity.Buyer) *string { return &b.ID }),
	text("Nom_Acheteur", func(b *entity.Buyer) *string { return &b.Name }),
	text("Email", func(b *entity.Buyer) *string { return &b.Email }),
	text("Departement", func(b *entity.Buyer) *string { return &b.Department }),
	timestamp("Date_Embauche", entity.DateLayout, func(b *entity.Buyer) *time.Time { return &b.HiredOn }),
	text("Specialite", func(b *entity.Buyer) *string { return &b.Specialty }),
	money("Budget_Alloue", func(b *entity.Buyer) *decimal.Decimal { return &b.AllocatedBudget }),
	money("Budget_Utilise", func(b *entity.Buyer) *decimal.Decimal { return &b.UsedBudget }),
	integer("Nombre_Commandes", func(b *entity.Buyer) *int { return &b.OrderCount }),
	money("Valeur_Commandes", func(b *entity.Buyer) *decimal.Decimal { return &b.OrderValue }),
	money("Economies_Realisees", func(b *entity.Buyer) *decimal.Decimal { return &b.SavingsRealized }),
	number("Taux_Economie", func(b *entity.Buyer) *float64 { return &b.SavingsRate }),
	number("Delai_Moyen_Traitement", func(b *entity.Buyer) *float64 { return &b.AvgProcessingDays }),
	number("Score_Performance", func(b *entity.Buyer) *float64 { return &b.PerformanceScore }),
	money("Objectif_Economies", func(b *entity.Buyer) *decimal.Decimal { return &b.SavingsTarget }),
	enum("Statut", func(b *entity.Buyer) *entity.BuyerStatus { return &b.Status }),
	text("Certification", func(b *entity.Buyer) *string { return &b.Certification }),
	integer("Nombre_Fournisseurs_Geres", func(b *entity.Buyer) *int { return &b.SuppliersManaged }),
	number("Note_Manager", func(b *entity.Buyer) *float64 { return &b.ManagerRating }),
}

var orderSchema = schema[entity.Order]{
	text("ID_Commande", func(o *entity.Order) *string { return &o.ID }),
	text("ID_Fournisseur", func(o *entity.Order) *string { return &o.SupplierID }),
	text("ID_Acheteur", func(o *entity.Order) *string { return &o.BuyerID }),
	timestamp("Date_Commande", entity.DateLayout, func(o *entity.Order) *time.Time { return &o.OrderedOn }),
	money("Montant_Total", func(o *entity.Order) *decimal.Decimal { return &o.TotalAmount }),
	enum("Statut", func(o *entity.Order) *entity.OrderStatus { return &o.Status }),
	number("Note_Qualite", func(o *entity.Order) *float64 { return &o.QualityNote }),
}

var auditSchema = schema[entity.AuditEntry]{
	text("ID_Historique", func(e *entity.AuditEntry) *string { return &e.ID }),
	timestamp("Date_Action", entity.AuditTimestampLayout, func(e *entity.AuditEntry) *time.Time { return &e.Timestamp }),
	text("Utilisateur", func(e *entity.AuditEntry) *string { return &e.Actor }),
	text("Action", func(e *entity.AuditEntry) *string { return &e.Action }),
	text("Table_Modifiee", func(e *entity.AuditEntry) *string { return &e.Table }),
	text("ID_Enregistrement", func(e *entity.AuditEntry) *string { return &e.RecordID }),
	text("Champ_Modifie", func(e *entity.AuditEntry) *string { return &e.Field }),
	text("Ancienne_Valeur", func(e *entity.AuditEntry) *string { return &e.OldValue }),
	text("Nouvelle_Valeur", func(e *entity.AuditEntry) *string { return &e.NewValue }),
	text("Commentaire", func(e *entity.AuditEntry) *string { return &e.Comment }),
}

type sequenceRow struct {
	table string
	value int
}

var sequenceSchema = schema[sequenceRow]{
	text("Table", func(r *sequenceRow) *string { return &r.table }),
	integer("Dernier_Numero", func(r *sequenceRow) *int { return &r.value }),
}
