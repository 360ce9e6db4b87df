package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-inspect/app"
	"github.com/mbolis/quick-inspect/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/register", Register(app))
	api.Post("/login", Login(app))
	api.Post("/logout", Logout(app))

	api.Route("/inspections", func(r chi.Router) {
		r.Use(middlewares.LoggedIn(app.Auth))

		r.Get("/", ListInspections(app))
		r.Post("/", StartInspection(app))
		r.Put(`/{id:^\d+$}/current`, SelectInspection(app))

		r.Route("/current", func(r chi.Router) {
			r.Use(middlewares.CurrentInspection(app.Inspections))

			r.Get("/", GetCurrentInspection(app))
			r.Put(`/questions/{qid:^\d+$}`, AnswerQuestion(app))
			r.Get("/validation", ValidateInspection(app))
			r.Get("/score", ScoreInspection(app))
			r.Post("/submit", SubmitInspection(app))
		})
	})

	return api
}
