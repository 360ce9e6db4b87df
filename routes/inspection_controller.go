package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/quick-inspect/app"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/log"
)

func ListInspections(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.Inspections.LoadAll(r.Context()); err != nil {
			logError(w, "list_inspections", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"inspections": app.Inspections.Inspections(),
		})
	}
}

func StartInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insp, err := app.Inspections.StartNewInspection(r.Context())
		if err != nil {
			logError(w, "start_inspection", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"inspection": insp,
		})
	}
}

func SelectInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inspectionId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		insp, err := app.Inspections.Select(inspectionId)
		if err != nil {
			logError(w, "select_inspection", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"inspection": insp,
		})
	}
}

func GetCurrentInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insp, err := app.Inspections.Current()
		if err != nil {
			logError(w, "get_current", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"inspection": insp,
			"finalScore": app.Inspections.ComputeFinalScore(),
		})
	}
}

type answerRequest struct {
	AnswerChoiceID *int `json:"answerChoiceId"`
}

func AnswerQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := strconv.Atoi(chi.URLParam(r, "qid"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.qid")
			return
		}

		answer := answerRequest{}
		err = render.DecodeJSON(r.Body, &answer)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		found, err := app.Inspections.SetSelectedAnswer(questionId, answer.AnswerChoiceID)
		if err != nil {
			logError(w, "set_answer", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "set_answer", questionId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ValidateInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"valid": app.Inspections.Validate(),
		})
	}
}

func ScoreInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := app.Inspections.ScoreReport()
		if err != nil {
			logError(w, "score", err)
			return
		}

		render.JSON(w, r, report)
	}
}

func SubmitInspection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Inspections.Submit(r.Context())
		if err != nil {
			logError(w, "submit_inspection", err)
			return
		}

		insp, err := app.Inspections.Current()
		if err != nil {
			logError(w, "submit_inspection.current", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"inspection": insp,
			"finalScore": app.Inspections.ComputeFinalScore(),
		})
	}
}
