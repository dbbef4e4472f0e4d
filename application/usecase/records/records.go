package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/validator"
	"github.com/shopspring/decimal"
)

// Dependencies are shared by the record use cases.
type Dependencies struct {
	Store     *state.Store
	Gate      *authorization.Gate
	Validator *validator.Validator
	Metrics   outbound.MetricsRecorder
	Logger    logger.Logger
	Clock     func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Metrics == nil {
		d.Metrics = outbound.NopMetrics{}
	}
	if d.Validator == nil {
		d.Validator = validator.New()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// Metric labels for the mutation counters.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// kind names one record table in metrics and the audit trail.
type kind struct {
	table      string
	auditTable string
	noun       string
}

var (
	supplierKind = kind{table: outbound.TableSuppliers, auditTable: entity.AuditTableSuppliers, noun: "fournisseur"}
	buyerKind    = kind{table: outbound.TableBuyers, auditTable: entity.AuditTableBuyers, noun: "acheteur"}
	orderKind    = kind{table: outbound.TableOrders, auditTable: entity.AuditTableOrders, noun: "commande"}
)

func (k kind) action(op string) string {
	switch op {
	case opCreate:
		return "Création " + k.noun
	case opUpdate:
		return "Modification " + k.noun
	default:
		return "Suppression " + k.noun
	}
}

// observe reports the outcome of a mutation to metrics and the log.
func (d Dependencies) observe(ctx context.Context, principal *entity.Principal, k kind, op, recordID string, err error) {
	if err == nil {
		d.Metrics.Mutation(k.table, op, outbound.OutcomeSuccess)
		logger.LogMutation(ctx, d.Logger, principal.Username, k.action(op), k.auditTable, recordID, nil)
		return
	}

	outcome := outbound.OutcomeFailed
	switch {
	case apperr.HasCode(err, apperr.ErrCodeForbidden):
		outcome = outbound.OutcomeForbidden
	case apperr.HasCode(err, apperr.ErrCodeValidation),
		apperr.HasCode(err, apperr.ErrCodeConfirmationRequired),
		apperr.HasCode(err, apperr.ErrCodeAmbiguousSelector):
		outcome = outbound.OutcomeInvalid
	case apperr.HasCode(err, apperr.ErrCodeNotFound):
		outcome = outbound.OutcomeNotFound
	case apperr.HasCode(err, apperr.ErrCodePersistence):
		d.Metrics.PersistenceFailure()
	}
	d.Metrics.Mutation(k.table, op, outcome)

	if outcome == outbound.OutcomeFailed {
		d.Logger.Error(ctx, "Record mutation failed", err, map[string]interface{}{
			"table":     k.table,
			"operation": op,
		})
	}
}

func (d Dependencies) list(ctx context.Context, principal *entity.Principal, fn func(*state.State)) error {
	if err := d.Gate.Require(ctx, principal, entity.PermissionRead); err != nil {
		return err
	}
	d.Store.View(fn)
	return nil
}

// uniqueIndex locates the single row matching selector.
func uniqueIndex[T state.Record](t *state.Table[T], match func(T) bool, k kind, selector string) (int, error) {
	idx := t.Indexes(match)
	switch len(idx) {
	case 0:
		return -1, apperr.ErrNotFound(k.table, selector)
	case 1:
		return idx[0], nil
	default:
		return -1, apperr.ErrAmbiguousSelector(k.table, selector, len(idx))
	}
}

// changeSet collects the fields an update touched and how they changed.
type changeSet struct {
	touched int
	fields  []string
	olds    []string
	news    []string
}

func (c *changeSet) record(field, oldValue, newValue string) {
	c.fields = append(c.fields, field)
	c.olds = append(c.olds, oldValue)
	c.news = append(c.news, newValue)
}

func (c *changeSet) change() state.Change {
	return state.Change{
		Field:    strings.Join(c.fields, ", "),
		OldValue: strings.Join(c.olds, "; "),
		NewValue: strings.Join(c.news, "; "),
	}
}

func setValue[T comparable](c *changeSet, field string, dst *T, v *T) {
	if v == nil {
		return
	}
	c.touched++
	if *dst != *v {
		c.record(field, fmt.Sprint(*dst), fmt.Sprint(*v))
		*dst = *v
	}
}

func setDecimal(c *changeSet, field string, dst *decimal.Decimal, v *decimal.Decimal) {
	if v == nil {
		return
	}
	c.touched++
	if !dst.Equal(*v) {
		c.record(field, dst.String(), v.String())
		*dst = *v
	}
}

// setDate stores whole days only, matching what the date columns keep.
func setDate(c *changeSet, field string, dst *time.Time, v *time.Time) {
	if v == nil {
		return
	}
	c.touched++
	day := entity.TruncateDay(*v)
	if !dst.Equal(day) {
		c.record(field, formatDate(*dst), formatDate(day))
		*dst = day
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}

func invalidStatus(value string) error {
	return apperr.ErrValidation(fmt.Sprintf("status %q is not allowed", value))
}

var errNothingToUpdate = apperr.ErrValidation("no fields to update")
