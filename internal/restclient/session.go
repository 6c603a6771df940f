package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
)

// Session is the transport a Client dispatches to, one method per verb.
// Implementations keep connection and cookie state across calls.
type Session interface {
	Get(ctx context.Context, url string, opts *Options) (*http.Response, error)
	// Post encodes jsonBody itself when it is non-nil; it then takes precedence over body.
	Post(ctx context.Context, url string, body []byte, jsonBody any, opts *Options) (*http.Response, error)
	Put(ctx context.Context, url string, body []byte, opts *Options) (*http.Response, error)
	Delete(ctx context.Context, url string, opts *Options) (*http.Response, error)
	Patch(ctx context.Context, url string, body []byte, opts *Options) (*http.Response, error)
}

// httpSession is the default Session: a pooled keep-alive client with a cookie jar.
type httpSession struct {
	client *http.Client
	// inject adds trace context headers to outgoing requests when set.
	inject func(ctx context.Context, header http.Header)
}

// NewHTTPClient returns the client used by default sessions: pooled
// connections and a cookie jar. No request timeout is set.
func NewHTTPClient() *http.Client {
	client := cleanhttp.DefaultPooledClient()
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	client.Jar = jar
	return client
}

func newHTTPSession(client *http.Client) *httpSession {
	if client == nil {
		client = NewHTTPClient()
	}
	return &httpSession{client: client}
}

func (s *httpSession) Get(ctx context.Context, url string, opts *Options) (*http.Response, error) {
	return s.do(ctx, http.MethodGet, url, nil, nil, opts)
}

func (s *httpSession) Post(ctx context.Context, url string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	return s.do(ctx, http.MethodPost, url, body, jsonBody, opts)
}

func (s *httpSession) Put(ctx context.Context, url string, body []byte, opts *Options) (*http.Response, error) {
	return s.do(ctx, http.MethodPut, url, body, nil, opts)
}

func (s *httpSession) Delete(ctx context.Context, url string, opts *Options) (*http.Response, error) {
	return s.do(ctx, http.MethodDelete, url, nil, nil, opts)
}

func (s *httpSession) Patch(ctx context.Context, url string, body []byte, opts *Options) (*http.Response, error) {
	return s.do(ctx, http.MethodPatch, url, body, nil, opts)
}

func (s *httpSession) do(ctx context.Context, method, target string, body []byte, jsonBody any, opts *Options) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc
	if timeout := opts.timeout(); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := newHTTPRequest(ctx, method, target, body, jsonBody, opts)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	if s.inject != nil {
		s.inject(ctx, req.Header)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	if cancel != nil {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	}
	return resp, nil
}

// newHTTPRequest assembles the wire request. Attachments turn the body into
// multipart/form-data; a JSON object raw body then supplies the form fields.
func newHTTPRequest(ctx context.Context, method, target string, body []byte, jsonBody any, opts *Options) (*http.Request, error) {
	if params := opts.params(); len(params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + params.Encode()
	}

	var (
		payload     []byte
		contentType string
	)
	switch {
	case len(opts.files()) > 0:
		var err error
		payload, contentType, err = encodeMultipart(body, opts.files())
		if err != nil {
			return nil, err
		}
	case jsonBody != nil:
		var err error
		payload, err = marshalJSON(jsonBody)
		if err != nil {
			return nil, fmt.Errorf("encode JSON body: %w", err)
		}
		contentType = "application/json"
	case body != nil:
		payload = body
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range opts.headers() {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" || strings.ContainsAny(trimmed, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", http.CanonicalHeaderKey(trimmed))
		}
		req.Header.Set(trimmed, value)
	}
	for _, cookie := range opts.cookies() {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}
	return req, nil
}

func encodeMultipart(body []byte, files []File) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if len(body) > 0 {
		parsed := gjson.ParseBytes(body)
		if !gjson.ValidBytes(body) || !parsed.IsObject() {
			return nil, "", errors.New("raw body must be a JSON object when files are attached")
		}
		var fieldErr error
		parsed.ForEach(func(key, value gjson.Result) bool {
			fieldErr = writer.WriteField(key.String(), value.String())
			return fieldErr == nil
		})
		if fieldErr != nil {
			return nil, "", fieldErr
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// marshalJSON produces the canonical text form of v: compact, HTML characters
// left alone, no trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// cancelOnClose releases a per-call timeout once the caller is done with the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
