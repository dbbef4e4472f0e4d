package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

// recordService is the shape shared by the supplier, buyer and order use cases.
type recordService[T, F, C, U any] interface {
	List(ctx context.Context, principal *entity.Principal, filter F) ([]T, error)
	Get(ctx context.Context, principal *entity.Principal, selector string) (*T, error)
	Create(ctx context.Context, principal *entity.Principal, req C) (string, error)
	Update(ctx context.Context, principal *entity.Principal, selector string, req U) error
	Delete(ctx context.Context, principal *entity.Principal, selector string, confirmed bool) (int, error)
}

// RecordHandler serves list/get/create/update/delete for one table.
type RecordHandler[T, F, C, U any] struct {
	service     recordService[T, F, C, U]
	parseFilter func(url.Values) (F, error)
}

func NewSupplierHandler(uc inbound.SupplierUseCase) *RecordHandler[entity.Supplier, inbound.SupplierFilter, inbound.CreateSupplierRequest, inbound.UpdateSupplierRequest] {
	return &RecordHandler[entity.Supplier, inbound.SupplierFilter, inbound.CreateSupplierRequest, inbound.UpdateSupplierRequest]{
		service: uc,
		parseFilter: func(q url.Values) (inbound.SupplierFilter, error) {
			return inbound.SupplierFilter{
				Category: q.Get("category"),
				Country:  q.Get("country"),
				Status:   q.Get("status"),
			}, nil
		},
	}
}

func NewBuyerHandler(uc inbound.BuyerUseCase) *RecordHandler[entity.Buyer, inbound.BuyerFilter, inbound.CreateBuyerRequest, inbound.UpdateBuyerRequest] {
	return &RecordHandler[entity.Buyer, inbound.BuyerFilter, inbound.CreateBuyerRequest, inbound.UpdateBuyerRequest]{
		service: uc,
		parseFilter: func(q url.Values) (inbound.BuyerFilter, error) {
			return inbound.BuyerFilter{
				Department: q.Get("department"),
				Status:     q.Get("status"),
			}, nil
		},
	}
}

func NewOrderHandler(uc inbound.OrderUseCase) *RecordHandler[entity.Order, inbound.OrderFilter, inbound.CreateOrderRequest, inbound.UpdateOrderRequest] {
	return &RecordHandler[entity.Order, inbound.OrderFilter, inbound.CreateOrderRequest, inbound.UpdateOrderRequest]{
		service:     uc,
		parseFilter: parseOrderFilter,
	}
}

func parseOrderFilter(q url.Values) (inbound.OrderFilter, error) {
	f := inbound.OrderFilter{
		SupplierID: q.Get("supplier_id"),
		BuyerID:    q.Get("buyer_id"),
		Status:     q.Get("status"),
	}
	var err error
	if f.From, err = parseDate(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = parseDate(q, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func parseDate(q url.Values, key string) (time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(entity.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, apperr.ErrValidation(key + " must be YYYY-MM-DD")
	}
	return t, nil
}

func (h *RecordHandler[T, F, C, U]) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r.URL.Query())
	if err != nil {
		response.FromError(w, err)
		return
	}
	rows, err := h.service.List(r.Context(), middleware.GetPrincipal(r.Context()), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	response.Success(w, http.StatusOK, "success", rows)
}

func (h *RecordHandler[T, F, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	row, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["selector"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", row)
}

func (h *RecordHandler[T, F, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var req C
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	id, err := h.service.Create(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "created", map[string]string{"id": id})
}

func (h *RecordHandler[T, F, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	var req U
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["selector"], req); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "updated", nil)
}

// Delete requires ?confirm=true; without it the use case answers with a
// confirmation error once the permission check passed.
func (h *RecordHandler[T, F, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	n, err := h.service.Delete(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["selector"], confirmed)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "deleted", map[string]int{"deleted": n})
}

// Register mounts the five routes under prefix, e.g. "/suppliers".
func (h *RecordHandler[T, F, C, U]) Register(r *mux.Router, prefix string) {
	r.HandleFunc(prefix, h.List).Methods(http.MethodGet)
	r.HandleFunc(prefix, h.Create).Methods(http.MethodPost)
	r.HandleFunc(prefix+"/{selector}", h.Get).Methods(http.MethodGet)
	r.HandleFunc(prefix+"/{selector}", h.Update).Methods(http.MethodPut)
	r.HandleFunc(prefix+"/{selector}", h.Delete).Methods(http.MethodDelete)
}
