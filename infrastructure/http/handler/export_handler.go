package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/response"
)

type ExportHandler struct {
	exportUseCase inbound.ExportUseCase
}

func NewExportHandler(exportUseCase inbound.ExportUseCase) *ExportHandler {
	return &ExportHandler{exportUseCase: exportUseCase}
}

// Download streams the table as an attachment rather than an envelope.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportUseCase.Download(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["table"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

func (h *ExportHandler) Publish(w http.ResponseWriter, r *http.Request) {
	res, err := h.exportUseCase.Publish(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["table"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "published", res)
}

func (h *ExportHandler) Register(r *mux.Router) {
	r.HandleFunc("/exports/{table}", h.Download).Methods(http.MethodGet)
	r.HandleFunc("/exports/{table}", h.Publish).Methods(http.MethodPost)
}
