package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerRequestID     = "X-Request-ID"
	mimeJSON            = "application/json"
)

// Client issues JSON requests against a fixed base URL on top of resty.
type Client struct {
	baseURL string
	client  *resty.Client
	log     Logger
	newID   func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes request logging to log.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithRestyClient swaps the underlying resty client, mainly for tests.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) {
		if rc != nil {
			c.client = rc
		}
	}
}

// New creates a Client for baseURL with the specified timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  newRestyBaseClient(timeout),
		log:     noopLogger{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// Retries stay disabled: every failure surfaces to the caller immediately.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	return c
}

// BaseURL returns the normalized base URL requests are issued against.
func (c *Client) BaseURL() string { return c.baseURL }

// Get performs GET <base><path>.
func (c *Client) Get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, token: token}, out)
}

// Post performs POST <base><path> with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, token string, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, token: token}, out)
}

// Put performs PUT <base><path> with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any, token string, out any) error {
	return c.do(ctx, request{method: http.MethodPut, path: path, body: body, token: token}, out)
}

// Delete performs DELETE <base><path>.
func (c *Client) Delete(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path, token: token}, out)
}

// request describes a single call. Only POST and PUT carry a body.
type request struct {
	method string
	path   string
	body   any
	token  string
}

func (r request) sendsBody() bool {
	return r.method == http.MethodPost || r.method == http.MethodPut
}

func (r request) validate() error {
	switch r.method {
	case http.MethodGet, http.MethodDelete:
		if r.body != nil {
			return fmt.Errorf("%s request must not carry a body", r.method)
		}
	case http.MethodPost, http.MethodPut:
	default:
		return fmt.Errorf("unsupported method %q", r.method)
	}
	return nil
}

// headers builds the header set for r. Authorization appears iff a token is given.
func (r request) headers(requestID string) map[string]string {
	h := map[string]string{
		headerAccept:    mimeJSON,
		headerRequestID: requestID,
	}
	if r.sendsBody() {
		h[headerContentType] = mimeJSON
	}
	if r.token != "" {
		h[headerAuthorization] = "Bearer " + r.token
	}
	return h
}

// encodeBody marshals the payload; a nil payload is sent as an empty object.
func (r request) encodeBody() ([]byte, error) {
	if r.body == nil {
		return []byte("{}"), nil
	}
	payload, err := json.Marshal(r.body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", r.method, err)
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := r.validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := c.newID()
	req := c.client.R().
		SetContext(ctx).
		SetHeaders(r.headers(requestID))

	if r.sendsBody() {
		payload, err := r.encodeBody()
		if err != nil {
			return err
		}
		req.SetBody(payload)
	}

	url := c.baseURL + r.path
	start := time.Now()
	resp, err := req.Execute(r.method, url)
	if err != nil {
		c.log.WarnObj("api request failed", "api_call", map[string]any{
			"method":     r.method,
			"path":       r.path,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return &TransportError{Method: r.method, URL: url, Err: err}
	}

	c.log.DebugObj("api request completed", "api_call", map[string]any{
		"method":     r.method,
		"path":       r.path,
		"request_id": requestID,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return decodeResponse(resp.StatusCode(), resp.Body(), out)
}

// decodeResponse parses body as JSON and maps non-2xx statuses to APIError.
// An empty body on a 2xx status is treated as "no content".
func decodeResponse(status int, body []byte, out any) error {
	success := status >= 200 && status <= 299

	if len(bytes.TrimSpace(body)) == 0 {
		if success {
			return nil
		}
		return newAPIError(status, nil)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &DecodeError{Status: status, Snippet: bodySnippet(body), Err: err}
	}
	if !success {
		return newAPIError(status, parsed)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Status: status, Snippet: bodySnippet(body), Err: err}
	}
	return nil
}
