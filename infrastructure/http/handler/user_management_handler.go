package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

// UserManagementHandler is read-only: accounts are created through the
// create_user and seed commands.
type UserManagementHandler struct {
	userManagementUseCase inbound.UserManagementUseCase
}

func NewUserManagementHandler(userManagementUseCase inbound.UserManagementUseCase) *UserManagementHandler {
	return &UserManagementHandler{
		userManagementUseCase: userManagementUseCase,
	}
}

func (h *UserManagementHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.userManagementUseCase.ListUsers(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}

func (h *UserManagementHandler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	res, err := h.userManagementUseCase.GetUserDetail(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", res)
}

func (h *UserManagementHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}", h.GetUserDetail).Methods(http.MethodGet)
}
