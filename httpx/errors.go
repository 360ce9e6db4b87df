package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mbolis/quick-inspect/log"
)

// Failure kinds of a remote call. Only the status code and transport level
// errors are told apart, response bodies of failed calls are never parsed.
var (
	ErrTransport = errors.New("inspection service unreachable")
	ErrStatus    = errors.New("inspection service refused the request")
	ErrEncode    = errors.New("cannot encode request")
	ErrDecode    = errors.New("cannot decode response")
)

type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and the error at the given level, and send an
// HTTP response with the given status and the error as a human-readable message
func LogStatusErr(w http.ResponseWriter, status int, level log.Level, code string, err error) {
	log.Log(level, code+":", err)
	http.Error(w, err.Error(), status)
}
