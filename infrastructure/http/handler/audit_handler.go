package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

type AuditHandler struct {
	auditUseCase inbound.AuditUseCase
}

func NewAuditHandler(auditUseCase inbound.AuditUseCase) *AuditHandler {
	return &AuditHandler{auditUseCase: auditUseCase}
}

func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := inbound.AuditQuery{Actor: r.URL.Query().Get("actor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		q.Limit = limit
	}

	entries, err := h.auditUseCase.Query(r.Context(), middleware.GetPrincipal(r.Context()), q)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", entries)
}

func (h *AuditHandler) Actors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.auditUseCase.Actors(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", actors)
}

func (h *AuditHandler) Register(r *mux.Router) {
	r.HandleFunc("/audit", h.Query).Methods(http.MethodGet)
	r.HandleFunc("/audit/actors", h.Actors).Methods(http.MethodGet)
}
