package middlewares

import (
	"net/http"

	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/inspection"
)

// LoggedIn rejects requests with 401 until a user has logged in.
func LoggedIn(auth *httpx.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.Session(); !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CurrentInspection rejects requests with 404 while no inspection is in progress.
func CurrentInspection(store *inspection.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := store.Current(); err != nil {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
