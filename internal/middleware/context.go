package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey      contextKey = "user_id"
	requestInfoKey contextKey = "request_info"
)

// requestInfo is filled in by inner handlers and read back by Logging once
// the request has been served.
type requestInfo struct {
	userID string
}

func SetUserID(ctx context.Context, userID string) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(r *http.Request) string {
	v, _ := r.Context().Value(userIDKey).(string)
	return v
}
