package routes

import (
	"errors"
	"net/http"

	"github.com/mbolis/quick-inspect/database"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/inspection"
	"github.com/mbolis/quick-inspect/log"
)

// logError maps a failed operation to its response. Failures the user can act
// on carry their message, everything else gets the default status text.
func logError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, inspection.ErrValidation),
		errors.Is(err, inspection.ErrUnknownChoice),
		errors.Is(err, httpx.ErrInvalidCredentials):
		httpx.LogStatusErr(w, http.StatusUnprocessableEntity, log.DebugLevel, code, err)
	case errors.Is(err, inspection.ErrNotDraft),
		errors.Is(err, database.ErrSubmitted):
		httpx.LogStatusErr(w, http.StatusConflict, log.DebugLevel, code, err)
	case errors.Is(err, inspection.ErrBusy):
		httpx.LogStatusErr(w, http.StatusTooManyRequests, log.DebugLevel, code, err)
	case errors.Is(err, inspection.ErrNoCurrent),
		errors.Is(err, inspection.ErrNotFound),
		errors.Is(err, database.ErrNotFound):
		httpx.LogStatus(w, http.StatusNotFound, log.DebugLevel, code+": "+err.Error())
	case errors.Is(err, httpx.ErrStatus),
		errors.Is(err, httpx.ErrTransport),
		errors.Is(err, httpx.ErrDecode):
		httpx.LogStatus(w, http.StatusBadGateway, log.WarnLevel, code+": "+err.Error())
	default:
		httpx.LogInternalError(w, code, err)
	}
}
