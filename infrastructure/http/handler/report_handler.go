package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

type ReportHandler struct {
	reporting inbound.ReportingUseCase
}

func NewReportHandler(reporting inbound.ReportingUseCase) *ReportHandler {
	return &ReportHandler{reporting: reporting}
}

// reply writes the result of a report call.
func reply(w http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", data)
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.reporting.Dashboard(r.Context(), middleware.GetPrincipal(r.Context()))
	reply(w, data, err)
}

func (h *ReportHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := inbound.SupplierFilter{
		Category: q.Get("category"),
		Country:  q.Get("country"),
		Status:   q.Get("status"),
	}
	data, err := h.reporting.SupplierKPIs(r.Context(), middleware.GetPrincipal(r.Context()), filter)
	reply(w, data, err)
}

func (h *ReportHandler) Buyers(w http.ResponseWriter, r *http.Request) {
	data, err := h.reporting.BuyerKPIs(r.Context(), middleware.GetPrincipal(r.Context()))
	reply(w, data, err)
}

func (h *ReportHandler) Countries(w http.ResponseWriter, r *http.Request) {
	data, err := h.reporting.CountryPerformance(r.Context(), middleware.GetPrincipal(r.Context()))
	reply(w, data, err)
}

// Correlation takes ?fields=quality_score,avg_delivery_days; empty means
// the default field set.
func (h *ReportHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	var fields []string
	for _, f := range strings.Split(r.URL.Query().Get("fields"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	data, err := h.reporting.Correlation(r.Context(), middleware.GetPrincipal(r.Context()), fields)
	reply(w, data, err)
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	data, err := h.reporting.MonthlyOrders(r.Context(), middleware.GetPrincipal(r.Context()))
	reply(w, data, err)
}

func (h *ReportHandler) Register(r *mux.Router) {
	r.HandleFunc("/reports/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/reports/suppliers", h.Suppliers).Methods(http.MethodGet)
	r.HandleFunc("/reports/buyers", h.Buyers).Methods(http.MethodGet)
	r.HandleFunc("/reports/countries", h.Countries).Methods(http.MethodGet)
	r.HandleFunc("/reports/correlation", h.Correlation).Methods(http.MethodGet)
	r.HandleFunc("/reports/monthly", h.Monthly).Methods(http.MethodGet)
}
