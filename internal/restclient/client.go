package restclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jibudata/dbgen/internal/tracing"
)

// Recorder receives the outcome of every dispatched call.
type Recorder interface {
	RecordRequest(method string, latency time.Duration, err error)
}

// Client sends requests relative to a fixed base URL over one Session.
// It is meant for sequential use; calls are not synchronized.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
	logger     hclog.Logger
	tracer     trace.Tracer
	propagate  bool
	recorder   Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger that receives the request log.
func WithLogger(logger hclog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSession replaces the default HTTP session.
func WithSession(session Session) ClientOption {
	return func(c *Client) {
		c.session = session
	}
}

// WithHTTPClient sets the *http.Client behind the default session.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTracer wraps every call in a client span. When propagate is true the
// default session also injects trace context headers.
func WithTracer(tracer trace.Tracer, propagate bool) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
		c.propagate = propagate
	}
}

// WithRecorder reports each call's latency and error to r.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

// New binds a client to baseURL. No network I/O happens here.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		s := newHTTPSession(c.httpClient)
		if c.propagate {
			s.inject = tracing.InjectHTTPHeaders
		}
		c.session = s
	}
	return c
}

// BaseURL returns the prefix every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login issues a GET against path and fails with an *UnreachableError when
// the response status is 400 or above. It returns c so calls can be chained.
func (c *Client) Login(ctx context.Context, path string, opts *Options) (*Client, error) {
	resp, err := c.Request(ctx, path, http.MethodGet, nil, nil, opts)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if !successful(resp.StatusCode) {
		return nil, &UnreachableError{URL: c.baseURL + path, StatusCode: resp.StatusCode}
	}
	return c, nil
}

func (c *Client) Get(ctx context.Context, path string, opts *Options) (*http.Response, error) {
	return c.Request(ctx, path, http.MethodGet, nil, nil, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts *Options) (*http.Response, error) {
	return c.Request(ctx, path, http.MethodDelete, nil, nil, opts)
}

// Post sends body, or jsonBody when it is non-nil. jsonBody reaches the
// session as a value and is encoded there.
func (c *Client) Post(ctx context.Context, path string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	return c.Request(ctx, path, http.MethodPost, body, jsonBody, opts)
}

// Put sends body. A non-nil jsonBody is serialized first and replaces body.
func (c *Client) Put(ctx context.Context, path string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	return c.Request(ctx, path, http.MethodPut, body, jsonBody, opts)
}

// Patch sends body. A non-nil jsonBody is serialized first and replaces body.
func (c *Client) Patch(ctx context.Context, path string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	return c.Request(ctx, path, http.MethodPatch, body, jsonBody, opts)
}

// Request is the single dispatch point. The target is c.BaseURL()+path with
// no escaping or slash handling. The request is logged before it is sent;
// methods outside GET, POST, PUT, DELETE and PATCH fail with
// *UnsupportedMethodError without logging or sending anything.
func (c *Client) Request(ctx context.Context, path, method string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	if !supportedMethod(method) {
		return nil, &UnsupportedMethodError{Method: method}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	url := c.baseURL + path
	logRequest(c.logger, url, method, body, jsonBody, opts)

	var span trace.Span
	if c.tracer != nil {
		ctx, span = tracing.StartRequestSpan(ctx, c.tracer, method, url)
	}

	start := time.Now()
	resp, err := c.dispatch(ctx, url, method, body, jsonBody, opts)
	latency := time.Since(start)

	if err == nil && resp.StatusCode >= 400 {
		c.logger.Debug("response status", "addr", url, "status", resp.StatusCode)
	}
	if c.recorder != nil {
		c.recorder.RecordRequest(method, latency, err)
	}
	if span != nil {
		var attrs []attribute.KeyValue
		if resp != nil {
			attrs = append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))
		}
		tracing.EndSpan(span, err, attrs...)
	}
	return resp, err
}

func (c *Client) dispatch(ctx context.Context, url, method string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	switch method {
	case http.MethodGet:
		return c.session.Get(ctx, url, opts)
	case http.MethodPost:
		return c.session.Post(ctx, url, body, jsonBody, opts)
	case http.MethodPut:
		if jsonBody != nil {
			encoded, err := marshalJSON(jsonBody)
			if err != nil {
				return nil, fmt.Errorf("encode JSON body: %w", err)
			}
			body = encoded
		}
		return c.session.Put(ctx, url, body, opts)
	case http.MethodDelete:
		return c.session.Delete(ctx, url, opts)
	case http.MethodPatch:
		if jsonBody != nil {
			encoded, err := marshalJSON(jsonBody)
			if err != nil {
				return nil, fmt.Errorf("encode JSON body: %w", err)
			}
			body = encoded
		}
		return c.session.Patch(ctx, url, body, opts)
	default:
		return nil, &UnsupportedMethodError{Method: method}
	}
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

func successful(status int) bool {
	return status < 400
}
