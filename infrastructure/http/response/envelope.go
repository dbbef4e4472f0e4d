package response

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/gudson/kpi/domain/error"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorData is the payload of a failed response.
type ErrorData struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	envelope := Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	}

	_ = json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, false, message, nil)
}

// FromError writes err with the status of its catalog code. Errors outside
// the catalog become a bare 500.
func FromError(w http.ResponseWriter, err error) {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		InternalServerError(w, "Internal server error")
		return
	}
	data := ErrorData{Code: string(appErr.Code)}
	switch appErr.Code {
	case apperr.ErrCodeValidation, apperr.ErrCodeConfirmationRequired,
		apperr.ErrCodeNotFound, apperr.ErrCodeAmbiguousSelector:
		data.Details = appErr.Details
	}
	WriteJSON(w, apperr.GetHTTPStatusCode(err), false, appErr.Message, data)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
