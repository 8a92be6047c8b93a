package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-app/internal/model"
	"github.com/jaekwang-park/todo-app/internal/notify"
	"github.com/jaekwang-park/todo-app/internal/service"
)

// LatestNotifier returns the most recent notification.
type LatestNotifier interface {
	Latest() (notify.Notification, bool)
}

type TodoHandler struct {
	svc   *service.TodoService
	notes LatestNotifier
}

func NewTodoHandler(svc *service.TodoService, notes LatestNotifier) *TodoHandler {
	return &TodoHandler{svc: svc, notes: notes}
}

// ServeHTTP routes /api/v1/todos and /api/v1/todos/{id}
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/todos")
	path = strings.Trim(path, "/")

	parts := strings.SplitN(path, "/", 2)
	todoID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	// /api/v1/todos/{id}/toggle
	if todoID != "" && subPath == "toggle" {
		if r.Method != http.MethodPatch {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleToggle(w, r, todoID)
		return
	}
	if subPath != "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}

	// /api/v1/todos/{id}
	if todoID != "" {
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, todoID)
		case http.MethodDelete:
			h.handleDelete(w, r, todoID)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
		return
	}

	// /api/v1/todos
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

// mutationResponse reports the outcome of a mutation together with the
// notification it raised.
type mutationResponse struct {
	Notification *notify.Notification `json:"notification,omitempty"`
	Error        *ErrorBody           `json:"error,omitempty"`
}

// respondMutation writes the result of a mutation. Mutations run on a
// context detached from the request, so a client disconnect does not abort
// the remote write or its reconciliation.
func (h *TodoHandler) respondMutation(w http.ResponseWriter, okStatus int, err error) {
	var resp mutationResponse
	if n, ok := h.notes.Latest(); ok {
		resp.Notification = &n
	}

	status := okStatus
	if err != nil {
		var body ErrorBody
		status, body = serviceErrorBody(err)
		resp.Error = &body
	}
	WriteJSON(w, status, resp)
}

type createTodoRequest struct {
	Text        string  `json:"text"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := model.NewTodo{
		Text:        req.Text,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    model.Priority(req.Priority),
		Status:      model.TodoStatus(req.Status),
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "due_date must be RFC 3339 or YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}

	err := h.svc.Add(context.WithoutCancel(r.Context()), input)
	h.respondMutation(w, http.StatusCreated, err)
}

type updateTodoRequest struct {
	Text        *string `json:"text,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	// DueDate set to "" clears the due date.
	DueDate *string `json:"due_date,omitempty"`
}

func (h *TodoHandler) handleUpdate(w http.ResponseWriter, r *http.Request, todoID string) {
	var req updateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.TodoPatch{
		Text:        req.Text,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := model.TodoStatus(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "due_date must be RFC 3339 or YYYY-MM-DD")
				return
			}
			patch.DueDate = &due
		}
	}

	err := h.svc.Update(context.WithoutCancel(r.Context()), todoID, patch)
	h.respondMutation(w, http.StatusOK, err)
}

type toggleTodoRequest struct {
	// Completed is the current value; the toggle sets the opposite.
	Completed *bool `json:"completed"`
}

func (h *TodoHandler) handleToggle(w http.ResponseWriter, r *http.Request, todoID string) {
	var req toggleTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Completed == nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "completed is required")
		return
	}

	err := h.svc.Toggle(context.WithoutCancel(r.Context()), todoID, *req.Completed)
	h.respondMutation(w, http.StatusOK, err)
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, todoID string) {
	err := h.svc.Delete(context.WithoutCancel(r.Context()), todoID)
	h.respondMutation(w, http.StatusOK, err)
}

type listTodosResponse struct {
	Incomplete []model.Todo `json:"incomplete"`
	Complete   []model.Todo `json:"complete"`
	Busy       service.Busy `json:"busy"`
	SortBy     model.SortBy `json:"sort_by"`
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sortBy, err := model.ParseSortBy(r.URL.Query().Get("sort"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_SORT", "sort must be 'latest', 'due-date' or 'priority'")
		return
	}

	todos, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	incomplete, complete := model.SortTodos(todos, sortBy)

	WriteJSON(w, http.StatusOK, listTodosResponse{
		Incomplete: incomplete,
		Complete:   complete,
		Busy:       h.svc.Busy(),
		SortBy:     sortBy,
	})
}

func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
