package records

import (
	"context"
	"strings"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
)

type BuyerUseCase struct {
	deps Dependencies
}

func NewBuyerUseCase(deps Dependencies) *BuyerUseCase {
	return &BuyerUseCase{deps: deps.withDefaults()}
}

var _ inbound.BuyerUseCase = (*BuyerUseCase)(nil)

func buyerSelector(selector string) func(entity.Buyer) bool {
	return func(b entity.Buyer) bool {
		return b.ID == selector || b.Name == selector
	}
}

func (uc *BuyerUseCase) List(ctx context.Context, principal *entity.Principal, filter inbound.BuyerFilter) ([]entity.Buyer, error) {
	var out []entity.Buyer
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		out = st.Buyers.Filter(filter.Match)
	})
	return out, err
}

func (uc *BuyerUseCase) Get(ctx context.Context, principal *entity.Principal, selector string) (*entity.Buyer, error) {
	var (
		out    entity.Buyer
		getErr error
	)
	err := uc.deps.list(ctx, principal, func(st *state.State) {
		idx, err := uniqueIndex(st.Buyers, buyerSelector(selector), buyerKind, selector)
		if err != nil {
			getErr = err
			return
		}
		out = st.Buyers.At(idx)
	})
	if err != nil {
		return nil, err
	}
	if getErr != nil {
		return nil, getErr
	}
	return &out, nil
}

func (uc *BuyerUseCase) Create(ctx context.Context, principal *entity.Principal, req inbound.CreateBuyerRequest) (string, error) {
	var id string
	err := uc.create(ctx, principal, req, &id)
	uc.deps.observe(ctx, principal, buyerKind, opCreate, id, err)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (uc *BuyerUseCase) create(ctx context.Context, principal *entity.Principal, req inbound.CreateBuyerRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}
	status := entity.BuyerStatusActive
	if req.Status != "" {
		status = entity.BuyerStatus(req.Status)
		if !status.Valid() {
			return invalidStatus(req.Status)
		}
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		b := entity.NewBuyer(tx.Buyers.NextID(), req.Name, req.Email, now)
		b.Department = req.Department
		b.Specialty = req.Specialty
		b.AllocatedBudget = req.AllocatedBudget
		b.SavingsTarget = req.SavingsTarget
		b.Certification = req.Certification
		b.Status = status

		tx.Buyers.Insert(b)
		tx.Audit.Append(now, principal.Username, buyerKind.action(opCreate), buyerKind.auditTable, b.ID,
			"Nouvel acheteur: "+b.Name)
		*id = b.ID
		return nil
	})
}

func (uc *BuyerUseCase) Update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateBuyerRequest) error {
	var id string
	err := uc.update(ctx, principal, selector, req, &id)
	uc.deps.observe(ctx, principal, buyerKind, opUpdate, id, err)
	return err
}

func (uc *BuyerUseCase) update(ctx context.Context, principal *entity.Principal, selector string, req inbound.UpdateBuyerRequest, id *string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionWrite); err != nil {
		return err
	}
	if err := uc.deps.Validator.Struct(req); err != nil {
		return err
	}
	var status *entity.BuyerStatus
	if req.Status != nil {
		st := entity.BuyerStatus(*req.Status)
		if !st.Valid() {
			return invalidStatus(*req.Status)
		}
		status = &st
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		idx, err := uniqueIndex(tx.Buyers, buyerSelector(selector), buyerKind, selector)
		if err != nil {
			return err
		}
		b := tx.Buyers.At(idx)

		var cs changeSet
		setValue(&cs, "name", &b.Name, req.Name)
		setValue(&cs, "email", &b.Email, req.Email)
		setValue(&cs, "department", &b.Department, req.Department)
		setValue(&cs, "specialty", &b.Specialty, req.Specialty)
		setDecimal(&cs, "allocated_budget", &b.AllocatedBudget, req.AllocatedBudget)
		setDecimal(&cs, "used_budget", &b.UsedBudget, req.UsedBudget)
		setValue(&cs, "order_count", &b.OrderCount, req.OrderCount)
		setDecimal(&cs, "order_value", &b.OrderValue, req.OrderValue)
		setDecimal(&cs, "savings_realized", &b.SavingsRealized, req.SavingsRealized)
		setValue(&cs, "savings_rate", &b.SavingsRate, req.SavingsRate)
		setValue(&cs, "avg_processing_days", &b.AvgProcessingDays, req.AvgProcessingDays)
		setValue(&cs, "performance_score", &b.PerformanceScore, req.PerformanceScore)
		setDecimal(&cs, "savings_target", &b.SavingsTarget, req.SavingsTarget)
		setValue(&cs, "status", &b.Status, status)
		setValue(&cs, "certification", &b.Certification, req.Certification)
		setValue(&cs, "suppliers_managed", &b.SuppliersManaged, req.SuppliersManaged)
		setValue(&cs, "manager_rating", &b.ManagerRating, req.ManagerRating)
		if cs.touched == 0 {
			return errNothingToUpdate
		}

		tx.Buyers.Replace(idx, b)
		tx.Audit.AppendChange(now, principal.Username, buyerKind.action(opUpdate), buyerKind.auditTable, b.ID,
			cs.change(), "Modification: "+selector)
		*id = b.ID
		return nil
	})
}

func (uc *BuyerUseCase) Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error) {
	var ids []string
	err := uc.delete(ctx, principal, selector, confirmed, &ids)
	uc.deps.observe(ctx, principal, buyerKind, opDelete, strings.Join(ids, ","), err)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (uc *BuyerUseCase) delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool, ids *[]string) error {
	if err := uc.deps.Gate.Require(ctx, principal, entity.PermissionDelete); err != nil {
		return err
	}
	if !confirmed {
		return apperr.ErrConfirmationRequired(selector)
	}

	now := uc.deps.Clock()
	return uc.deps.Store.RunInTransaction(ctx, func(tx *state.State) error {
		match := buyerSelector(selector)
		victims := tx.Buyers.Filter(match)
		if len(victims) == 0 {
			return apperr.ErrNotFound(buyerKind.table, selector)
		}
		tx.Buyers.RemoveWhere(match)

		removed := make([]string, 0, len(victims))
		for _, v := range victims {
			tx.Audit.Append(now, principal.Username, buyerKind.action(opDelete), buyerKind.auditTable, v.ID,
				"Suppression: "+v.Name)
			removed = append(removed, v.ID)
		}
		*ids = removed
		return nil
	})
}
