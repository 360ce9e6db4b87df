package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/mbolis/quick-inspect/log"
)

// Endpoints of the inspection service.
const (
	StartInspectionPath  = "/api/inspections/start"
	SubmitInspectionPath = "/api/inspections/submit"
	RegisterPath         = "/api/register"
	LoginPath            = "/api/login"
)

var errEmptyBody = errors.New("empty response body")

// Client issues JSON requests against the inspection service rooted at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Get fetches path and decodes the 200 reply into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

// Post sends body as JSON. A nil out ignores whatever the service replied with.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

// Do performs one request. Anything but a 200 reply is a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, wrap(ErrEncode, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, wrap(ErrEncode, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := newRequestID()
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	entry := log.WithFields(map[string]any{"method": method, "path": path, "request_id": requestID})

	start := time.Now()
	httpResp, err := c.HTTP.Do(req)
	if err != nil {
		entry.WithError(err).Debug("remote call failed")
		return nil, wrap(ErrTransport, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, wrap(ErrTransport, err)
	}
	entry.WithField("status", httpResp.StatusCode).WithField("elapsed", time.Since(start)).Debug("remote call")

	resp := &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      data,
		RequestID: requestID,
	}
	if !resp.OK() {
		return resp, &StatusError{Method: method, Path: path, StatusCode: resp.Status}
	}
	return resp, nil
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
