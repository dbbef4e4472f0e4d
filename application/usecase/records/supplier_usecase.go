package records

import (
	"context"
	"strings"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

type SupplierUseCase struct {
	deps Dependencies
}

func NewSupplierUseCase(deps Dependencies) *SupplierUseCase {
	return &SupplierUseCase{deps: deps.withDefaults()}
}

var _ inbound.SupplierUseCase = (*SupplierUseCase)(nil)

// suppliers are addressed by id or by exact name
func supplierSelector(selector string) func(entity.Supplier) bool {
	return func(s entity.Supplier) bool {
		return s.ID == selector || s.Name == selector
	}
}

func (uc *SupplierUseCase) List(ctx context.Context, principal *entity.Principal, filter inbound.SupplierFilter) ([]entity.Supplier, error) {
	var out []entity.Supplier
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		out = st.Suppliers.Filter(filter.Match)
	})
	return out, err
}

func (uc *SupplierUseCase) Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Supplier, error) {
	var (
		out    entity.Supplier
		getErr error
	)
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		idx, err := uniqueIndex(st.Suppliers, supplierSelector(selector), supplierKind, selector)
		if err != nil {
			getErr = err
			return
		}
		out = st.Suppliers.At(idx)
	})
	if err != nil {
		return nil, err
	}
	if getErr != nil {
		return nil, getErr
	}
	return &out, nil
}

// Create adds a supplier under evaluation and returns its new id.
func (uc *SupplierUseCase) Create(ctx context.Context, principal *entity.Principal, req inbound.CreateSupplierRequest) (string, error) {
	var id string
	err := uc.create(ctx, principal, req, &id)
	uc.deps.observe(ctx, principal, supplierKind, opCreate, id, err)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (uc *SupplierUseCase) create(ctx context.Context, principal *entity.Principal, req inbound.CreateSupplierRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		s := entity.NewSupplier(tx.Suppliers.NextID(), req.Name, now)
		s.Category = req.Category
		s.Country = req.Country
		s.Email = req.Email
		s.Phone = req.Phone
		s.QualityScore = req.QualityScore
		s.AvgDeliveryDays = req.AvgDeliveryDays
		s.ComplianceRate = req.ComplianceRate
		s.AvgOrderPrice = req.AvgOrderPrice
		s.OrderCount = req.OrderCount
		s.TotalRevenue = req.TotalRevenue
		s.PerformanceRating = req.QualityScore
		s.Certification = req.Certification
		s.PaymentTermsDays = req.PaymentTermsDays
		s.AccountOwner = principal.FullName

		tx.Suppliers.Insert(s)
		tx.Audit.Append(now, principal.Username, supplierKind.action(opCreate), supplierKind.auditTable, s.ID,
			"Nouveau fournisseur: "+s.Name)
		*id = s.ID
		return nil
	})
}

// Update changes the fields present in req on the single supplier matching
// selector.
func (uc *SupplierUseCase) Update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateSupplierRequest) error {
	var id string
	err := uc.update(ctx, principal, selector, req, &id)
	uc.deps.observe(ctx, principal, supplierKind, opUpdate, id, err)
	return err
}

func (uc *SupplierUseCase) update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateSupplierRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}
	var status *entity.SupplierStatus
	if req.Status != nil {
		st := entity.SupplierStatus(*req.Status)
		if !st.Valid() {
			return invalidStatus(*req.Status)
		}
		status = &st
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		idx, err := uniqueIndex(tx.Suppliers, supplierSelector(selector), supplierKind, selector)
		if err != nil {
			return err
		}
		s := tx.Suppliers.At(idx)

		var cs changeSet
		setValue(&cs, "name", &s.Name, req.Name)
		setValue(&cs, "category", &s.Category, req.Category)
		setValue(&cs, "country", &s.Country, req.Country)
		setValue(&cs, "email", &s.Email, req.Email)
		setValue(&cs, "phone", &s.Phone, req.Phone)
		setValue(&cs, "quality_score", &s.QualityScore, req.QualityScore)
		setValue(&cs, "avg_delivery_days", &s.AvgDeliveryDays, req.AvgDeliveryDays)
		setValue(&cs, "compliance_rate", &s.ComplianceRate, req.ComplianceRate)
		setDecimal(&cs, "avg_order_price", &s.AvgOrderPrice, req.AvgOrderPrice)
		setValue(&cs, "order_count", &s.OrderCount, req.OrderCount)
		setDecimal(&cs, "total_revenue", &s.TotalRevenue, req.TotalRevenue)
		setValue(&cs, "status", &s.Status, status)
		setValue(&cs, "performance_rating", &s.PerformanceRating, req.PerformanceRating)
		setValue(&cs, "certification", &s.Certification, req.Certification)
		setValue(&cs, "payment_terms_days", &s.PaymentTermsDays, req.PaymentTermsDays)
		setValue(&cs, "account_owner", &s.AccountOwner, req.AccountOwner)
		if cs.touched == 0 {
			return errNothingToUpdate
		}

		tx.Suppliers.Replace(idx, s)
		tx.Audit.AppendChange(now, principal.Username, supplierKind.action(opUpdate), supplierKind.auditTable, s.ID,
			cs.change(), "Modification: "+selector)
		*id = s.ID
		return nil
	})
}

// Delete removes every supplier matching selector. It requires the delete
// permission and an explicit confirmation, in that order.
func (uc *SupplierUseCase) Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error) {
	var ids []string
	err := uc.delete(ctx, principal, selector, confirmed, &ids)
	uc.deps.observe(ctx, principal, supplierKind, opDelete, strings.Join(ids, ","), err)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (uc *SupplierUseCase) delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool, ids *[]string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionDelete); err != nil {
		return err
	}
	if !confirmed {
		return apperr.ErrConfirmationRequired(selector)
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		match := supplierSelector(selector)
		victims := tx.Suppliers.Filter(match)
		if len(victims) == 0 {
			return apperr.ErrNotFound(supplierKind.table, selector)
		}
		tx.Suppliers.RemoveWhere(match)

		removed := make([]string, 0, len(victims))
		for _, v := range victims {
			tx.Audit.Append(now, principal.Username, supplierKind.action(opDelete), supplierKind.auditTable, v.ID,
				"Suppression: "+v.Name)
			removed = append(removed, v.ID)
		}
		*ids = removed
		return nil
	})
}
