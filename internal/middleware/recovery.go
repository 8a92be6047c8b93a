package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

type recoveryWriter struct {
	http.ResponseWriter
	headerWritten bool
}

func (rw *recoveryWriter) WriteHeader(code int) {
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recoveryWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	return rw.ResponseWriter.Write(b)
}

func (rw *recoveryWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Recovery turns a handler panic into a 500 INTERNAL_ERROR response. A panic
// with http.ErrAbortHandler is passed through so the server can abort the
// connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &recoveryWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", GetUserID(r),
					"stack", string(debug.Stack()),
				)
				if rw.headerWritten {
					return
				}
				writeInternalError(rw, logger)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

func writeInternalError(w http.ResponseWriter, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		},
	})
	if err != nil {
		logger.Error("failed to write recovery response", "error", err)
	}
}
