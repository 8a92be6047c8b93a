package middleware

import (
	"net/http"

	"github.com/jaekwang-park/todo-app/internal/session"
)

// IdentitySource reports who is signed in.
type IdentitySource interface {
	Current() (session.Identity, bool)
}

// Identity tags the request with the signed-in user, if any. It never
// rejects a request; handlers decide what requires a session.
func Identity(source IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := source.Current(); ok {
				r = r.WithContext(SetUserID(r.Context(), id.UserID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
