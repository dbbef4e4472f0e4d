package handler

import (
	"net/http"

	"github.com/gudson/kpi/infrastructure/http/response"
)

func Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "healthy", map[string]string{"status": "healthy"})
}
