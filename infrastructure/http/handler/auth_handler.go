package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
}

func NewAuthHandler(authUseCase inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	loginRes, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", loginRes)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authUseCase.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		response.Unauthorized(w, "User not authenticated")
		return
	}
	response.Success(w, http.StatusOK, "success", inbound.NewPrincipalView(principal))
}
