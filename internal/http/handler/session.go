package handler

import (
	"net/http"

	"github.com/jaekwang-park/todo-app/internal/session"
)

// SessionSource reports the session state.
type SessionSource interface {
	State() session.State
}

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	Loading       bool              `json:"loading"`
	User          *session.Identity `json:"user"`
}

func newSessionResponse(s session.State) sessionResponse {
	return sessionResponse{
		Authenticated: s.Identity != nil,
		Loading:       s.Loading,
		User:          s.Identity,
	}
}

// SessionHandler serves GET /api/v1/session.
type SessionHandler struct {
	sessions SessionSource
}

func NewSessionHandler(sessions SessionSource) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	WriteJSON(w, http.StatusOK, newSessionResponse(h.sessions.State()))
}
