package http

import (
	"net/http"

	"github.com/jaekwang-park/todo-app/internal/http/handler"
	"github.com/jaekwang-park/todo-app/internal/notify"
	"github.com/jaekwang-park/todo-app/internal/service"
	"github.com/jaekwang-park/todo-app/internal/session"
)

// Deps are the collaborators served over HTTP.
type Deps struct {
	DB       handler.Pinger
	Todos    *service.TodoService
	Auth     *service.AuthService
	Notes    *notify.Queue
	Sessions *session.Provider
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler(d.DB))

	mux.Handle("/api/v1/session", handler.NewSessionHandler(d.Sessions))
	mux.Handle("/api/v1/auth/", handler.NewAuthHandler(d.Auth))

	todoHandler := handler.NewTodoHandler(d.Todos, d.Notes)
	mux.Handle("/api/v1/todos", todoHandler)
	mux.Handle("/api/v1/todos/", todoHandler)

	notificationHandler := handler.NewNotificationHandler(d.Notes)
	mux.Handle("/api/v1/notifications", notificationHandler)
	mux.Handle("/api/v1/notifications/", notificationHandler)

	return mux
}
