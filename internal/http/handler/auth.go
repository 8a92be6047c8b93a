package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/todo-app/internal/cognito"
	"github.com/jaekwang-park/todo-app/internal/service"
	"github.com/jaekwang-park/todo-app/internal/session"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// ServeHTTP routes /api/v1/auth/* requests.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/auth/")
	path = strings.TrimRight(path, "/")

	switch path {
	case "signup":
		h.requirePost(w, r, h.handleSignUp)
	case "confirm-signup":
		h.requirePost(w, r, h.handleConfirmSignUp)
	case "login":
		h.requirePost(w, r, h.handleLogin)
	case "refresh":
		h.requirePost(w, r, h.handleRefresh)
	case "logout":
		h.requirePost(w, r, h.handleLogout)
	case "dev-login":
		h.requirePost(w, r, h.handleDevLogin)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

func (h *AuthHandler) requirePost(w http.ResponseWriter, r *http.Request, handler func(http.ResponseWriter, *http.Request)) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	handler(w, r)
}

// --- DTOs ---

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmSignUpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type devLoginRequest struct {
	UserID string `json:"user_id"`
}

// --- Handlers ---

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.SignUp(r.Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, out)
}

func (h *AuthHandler) handleConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	var req confirmSignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ConfirmSignUp(r.Context(), service.ConfirmSignUpInput{
		Email: req.Email,
		Code:  req.Code,
	}); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newSessionResponse(h.svc.State()))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		handleAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	var req devLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.svc.DevLogin(r.Context(), req.UserID); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newSessionResponse(h.svc.State()))
}

// handleAuthError maps cognito sentinel errors and service errors to HTTP responses.
// Internal error details are logged but not exposed to clients.
func handleAuthError(w http.ResponseWriter, err error) {
	if info, ok := cognito.LookupError(err); ok {
		slog.Warn("auth error", "code", info.Code, "detail", err.Error())
		WriteError(w, info.Status, info.Code, cognitoErrorMessage(info.Code))
		return
	}
	if errors.Is(err, session.ErrInvalidToken) {
		WriteError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
		return
	}

	handleServiceError(w, err)
}

// cognitoErrorMessage returns a safe, user-facing message for each cognito error code.
func cognitoErrorMessage(code string) string {
	messages := map[string]string{
		"USER_ALREADY_EXISTS":     "a user with this email already exists",
		"USER_NOT_FOUND":          "user not found",
		"USER_NOT_CONFIRMED":      "email address not confirmed",
		"INVALID_PASSWORD":        "password does not meet requirements",
		"INVALID_CODE":            "invalid verification code",
		"CODE_EXPIRED":            "verification code has expired",
		"TOO_MANY_REQUESTS":       "too many requests, please try again later",
		"NOT_AUTHORIZED":          "incorrect email or password",
		"LIMIT_EXCEEDED":          "attempt limit exceeded, please try again later",
		"PASSWORD_RESET_REQUIRED": "password reset is required",
		"INVALID_PARAMETER":       "invalid request parameter",
	}
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "an error occurred"
}
