package httpx

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Response is a fully read reply of the inspection service.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

func (resp *Response) OK() bool {
	return resp.Status == http.StatusOK
}

// DecodeJSON unmarshals the body into out. An empty body only decodes into a nil target.
func (resp *Response) DecodeJSON(out any) error {
	if out == nil {
		return nil
	}
	if len(resp.Body) == 0 {
		return wrap(ErrDecode, errEmptyBody)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return wrap(ErrDecode, err)
	}
	return nil
}
