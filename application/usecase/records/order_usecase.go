package records

import (
	"context"
	"strings"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

type OrderUseCase struct {
	deps Dependencies
}

func NewOrderUseCase(deps Dependencies) *OrderUseCase {
	return &OrderUseCase{deps: deps.withDefaults()}
}

var _ inbound.OrderUseCase = (*OrderUseCase)(nil)

// orders have no name, only their id
func orderSelector(selector string) func(entity.Order) bool {
	return func(o entity.Order) bool { return o.ID == selector }
}

func (uc *OrderUseCase) List(ctx context.Context, principal *entity.Principal, filter inbound.OrderFilter) ([]entity.Order, error) {
	var out []entity.Order
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		out = st.Orders.Filter(filter.Match)
	})
	return out, err
}

func (uc *OrderUseCase) Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Order, error) {
	var (
		out    entity.Order
		getErr error
	)
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		idx, err := uniqueIndex(st.Orders, orderSelector(selector), orderKind, selector)
		if err != nil {
			getErr = err
			return
		}
		out = st.Orders.At(idx)
	})
	if err != nil {
		return nil, err
	}
	if getErr != nil {
		return nil, getErr
	}
	return &out, nil
}

func (uc *OrderUseCase) Create(ctx context.Context, principal *entity.Principal, req inbound.CreateOrderRequest) (string, error) {
	var id string
	err := uc.create(ctx, principal, req, &id)
	uc.deps.observe(ctx, principal, orderKind, opCreate, id, err)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (uc *OrderUseCase) create(ctx context.Context, principal *entity.Principal, req inbound.CreateOrderRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	req.SupplierID = strings.TrimSpace(req.SupplierID)
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}
	status := entity.OrderStatusPending
	if req.Status != "" {
		status = entity.OrderStatus(req.Status)
		if !status.Valid() {
			return invalidStatus(req.Status)
		}
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		o := entity.NewOrder(tx.Orders.NextID(), req.SupplierID, req.BuyerID, now)
		if req.OrderedOn != nil {
			o.OrderedOn = entity.TruncateDay(*req.OrderedOn)
		}
		o.TotalAmount = req.TotalAmount
		o.Status = status
		o.QualityNote = req.QualityNote

		tx.Orders.Insert(o)
		tx.Audit.Append(now, principal.Username, orderKind.action(opCreate), orderKind.auditTable, o.ID,
			"Nouvelle commande: "+o.SupplierID+" / "+o.BuyerID)
		*id = o.ID
		return nil
	})
}

func (uc *OrderUseCase) Update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateOrderRequest) error {
	var id string
	err := uc.update(ctx, principal, selector, req, &id)
	uc.deps.observe(ctx, principal, orderKind, opUpdate, id, err)
	return err
}

func (uc *OrderUseCase) update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateOrderRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}
	var status *entity.OrderStatus
	if req.Status != nil {
		st := entity.OrderStatus(*req.Status)
		if !st.Valid() {
			return invalidStatus(*req.Status)
		}
		status = &st
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		idx, err := uniqueIndex(tx.Orders, orderSelector(selector), orderKind, selector)
		if err != nil {
			return err
		}
		o := tx.Orders.At(idx)

		var cs changeSet
		setValue(&cs, "supplier_id", &o.SupplierID, req.SupplierID)
		setValue(&cs, "buyer_id", &o.BuyerID, req.BuyerID)
		setDate(&cs, "ordered_on", &o.OrderedOn, req.OrderedOn)
		setDecimal(&cs, "total_amount", &o.TotalAmount, req.TotalAmount)
		setValue(&cs, "status", &o.Status, status)
		setValue(&cs, "quality_note", &o.QualityNote, req.QualityNote)
		if cs.touched == 0 {
			return errNothingToUpdate
		}

		tx.Orders.Replace(idx, o)
		tx.Audit.AppendChange(now, principal.Username, orderKind.action(opUpdate), orderKind.auditTable, o.ID,
			cs.change(), "Modification: "+selector)
		*id = o.ID
		return nil
	})
}

func (uc *OrderUseCase) Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error) {
	var ids []string
	err := uc.delete(ctx, principal, selector, confirmed, &ids)
	uc.deps.observe(ctx, principal, orderKind, opDelete, strings.Join(ids, ","), err)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (uc *OrderUseCase) delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool, ids *[]string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionDelete); err != nil {
		return err
	}
	if !confirmed {
		return apperr.ErrConfirmationRequired(selector)
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		match := orderSelector(selector)
		victims := tx.Orders.Filter(match)
		if len(victims) == 0 {
			return apperr.ErrNotFound(orderKind.table, selector)
		}
		tx.Orders.RemoveWhere(match)

		removed := make([]string, 0, len(victims))
		for _, v := range victims {
			tx.Audit.Append(now, principal.Username, orderKind.action(opDelete), orderKind.auditTable, v.ID,
				"Suppression: "+v.ID)
			removed = append(removed, v.ID)
		}
		*ids = removed
		return nil
	})
}
