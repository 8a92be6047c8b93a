package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaekwang-park/todo-app/internal/service"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "INVALID_SORT", "unknown sort option")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var result ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Error.Code != "INVALID_SORT" || result.Error.Message != "unknown sort option" {
		t.Errorf("unexpected error body: %+v", result.Error)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"valid", `{"title":"Buy milk"}`, true},
		{"malformed", `{"title":`, false},
		{"empty", ``, false},
		{"too large", `{"title":"` + strings.Repeat("x", maxBodySize) + `"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Title string `json:"title"`
			}
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ok := decodeJSON(w, r, &v)

			if ok != tt.wantOK {
				t.Fatalf("decodeJSON = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				if v.Title != "Buy milk" {
					t.Errorf("expected title to be decoded, got %q", v.Title)
				}
				return
			}
			if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "INVALID_JSON") {
				t.Errorf("expected 400 INVALID_JSON, got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestServiceErrorBody(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: title is required", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("update todo: %w", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{service.ErrNoCachedList, http.StatusConflict, "NO_CACHED_LIST"},
		{fmt.Errorf("list todos: %w: %w", service.ErrRemote, errors.New("connection refused")), http.StatusBadGateway, "REMOTE_ERROR"},
		{service.ErrAuthUnavailable, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, body := serviceErrorBody(tt.err)
			if status != tt.wantStatus || body.Code != tt.wantCode {
				t.Errorf("got %d/%s, want %d/%s", status, body.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestServiceErrorBody_HidesInternalDetail(t *testing.T) {
	_, body := serviceErrorBody(fmt.Errorf("list todos: %w: %w", service.ErrRemote, errors.New("password authentication failed")))
	if strings.Contains(body.Message, "password") {
		t.Errorf("remote detail leaked into message: %q", body.Message)
	}
}
