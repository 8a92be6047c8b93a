package cognito

import (
	"errors"
	"net/http"
)

// Sentinel errors for Cognito operations.
var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidCode           = errors.New("invalid code")
	ErrCodeExpired           = errors.New("code expired")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// ErrorInfo is the HTTP status and error code a sentinel is reported with.
type ErrorInfo struct {
	Status int
	Code   string
}

var errorMap = map[error]ErrorInfo{
	ErrUserAlreadyExists:     {Status: http.StatusConflict, Code: "USER_ALREADY_EXISTS"},
	ErrUserNotFound:          {Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
	ErrUserNotConfirmed:      {Status: http.StatusForbidden, Code: "USER_NOT_CONFIRMED"},
	ErrInvalidPassword:       {Status: http.StatusBadRequest, Code: "INVALID_PASSWORD"},
	ErrInvalidCode:           {Status: http.StatusBadRequest, Code: "INVALID_CODE"},
	ErrCodeExpired:           {Status: http.StatusBadRequest, Code: "CODE_EXPIRED"},
	ErrTooManyRequests:       {Status: http.StatusTooManyRequests, Code: "TOO_MANY_REQUESTS"},
	ErrNotAuthorized:         {Status: http.StatusUnauthorized, Code: "NOT_AUTHORIZED"},
	ErrLimitExceeded:         {Status: http.StatusTooManyRequests, Code: "LIMIT_EXCEEDED"},
	ErrPasswordResetRequired: {Status: http.StatusForbidden, Code: "PASSWORD_RESET_REQUIRED"},
	ErrInvalidParameter:      {Status: http.StatusBadRequest, Code: "INVALID_PARAMETER"},
}

// LookupError reports the ErrorInfo of the Cognito sentinel wrapped by err.
func LookupError(err error) (ErrorInfo, bool) {
	for sentinel, info := range errorMap {
		if errors.Is(err, sentinel) {
			return info, true
		}
	}
	return ErrorInfo{}, false
}
