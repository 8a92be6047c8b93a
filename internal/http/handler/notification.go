package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jaekwang-park/todo-app/internal/notify"
)

// NotificationStore lists and dismisses notifications.
type NotificationStore interface {
	List() []notify.Notification
	Dismiss(id string)
}

type NotificationHandler struct {
	notes NotificationStore
}

func NewNotificationHandler(notes NotificationStore) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

type dismissRequest struct {
	// ID empty dismisses every notification.
	ID string `json:"id"`
}

// ServeHTTP routes /api/v1/notifications and /api/v1/notifications/dismiss
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.writeList(w)
	case "dismiss":
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleDismiss(w, r)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

func (h *NotificationHandler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req dismissRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	h.notes.Dismiss(req.ID)
	h.writeList(w)
}

func (h *NotificationHandler) writeList(w http.ResponseWriter) {
	list := h.notes.List()
	if list == nil {
		list = []notify.Notification{}
	}
	WriteJSON(w, http.StatusOK, notificationsResponse{Notifications: list})
}
