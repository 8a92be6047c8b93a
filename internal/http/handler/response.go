package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jaekwang-park/todo-app/internal/service"
)

const maxBodySize = 1 << 20 // 1 MB

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes the
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return false
	}
	return true
}

// serviceErrorBody maps service errors to a status and error body.
func serviceErrorBody(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, ErrorBody{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorBody{Code: "UNAUTHORIZED", Message: "sign in required"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Code: "FORBIDDEN", Message: "access denied"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: "NOT_FOUND", Message: "resource not found"}
	case errors.Is(err, service.ErrNoCachedList):
		return http.StatusConflict, ErrorBody{Code: "NO_CACHED_LIST", Message: "todo list not loaded"}
	case errors.Is(err, service.ErrRemote):
		return http.StatusBadGateway, ErrorBody{Code: "REMOTE_ERROR", Message: "remote store error"}
	case errors.Is(err, service.ErrAuthUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Code: "AUTH_UNAVAILABLE", Message: "authentication is not configured"}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	status, body := serviceErrorBody(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	WriteJSON(w, status, ErrorResponse{Error: body})
}
