package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-inspect/app"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/log"
	"github.com/mbolis/quick-inspect/model"
)

// credentials come either as basic auth or as a JSON body
func parseCredentials(r *http.Request) (model.Credentials, bool) {
	if user, pass, ok := r.BasicAuth(); ok {
		return model.Credentials{Email: user, Password: pass}, true
	}

	creds := model.Credentials{}
	if err := render.DecodeJSON(r.Body, &creds); err != nil {
		return creds, false
	}
	return creds, true
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, ok := parseCredentials(r)
		if !ok {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.Auth.Register(r.Context(), creds); err != nil {
			logError(w, "register", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, ok := parseCredentials(r)
		if !ok {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.Auth.Login(r.Context(), creds); err != nil {
			logError(w, "login", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"email": creds.Email,
		})
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.Auth.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}
