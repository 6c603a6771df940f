package restclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options carries the optional parts of a request. A nil *Options is valid
// and means none of them.
type Options struct {
	Headers map[string]string
	Params  Params
	Files   []File
	Cookies []*http.Cookie

	// Timeout bounds the call including reading the response body. Zero means no bound.
	Timeout time.Duration
}

func (o *Options) headers() map[string]string {
	if o == nil {
		return nil
	}
	return o.Headers
}

func (o *Options) params() Params {
	if o == nil {
		return nil
	}
	return o.Params
}

func (o *Options) files() []File {
	if o == nil {
		return nil
	}
	return o.Files
}

func (o *Options) cookies() []*http.Cookie {
	if o == nil {
		return nil
	}
	return o.Cookies
}

func (o *Options) timeout() time.Duration {
	if o == nil {
		return 0
	}
	return o.Timeout
}

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of query parameters. Order is kept on the wire and in logs.
type Params []Param

// NewParams builds Params from alternating keys and values. A trailing key
// without a value is dropped.
func NewParams(pairs ...string) Params {
	params := make(Params, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		params = append(params, Param{Key: pairs[i], Value: pairs[i+1]})
	}
	return params
}

// Encode renders the parameters as a query string in insertion order.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(param.Value))
	}
	return sb.String()
}

// MarshalJSON encodes the parameters as a JSON object keeping their order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, param.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, param.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// File is a multipart attachment.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// fileDescriptor is what the request log shows for an attachment.
type fileDescriptor struct {
	Field       string
	Name        string
	ContentType string
	Size        int
}

func describeFiles(files []File) []fileDescriptor {
	out := make([]fileDescriptor, len(files))
	for i, f := range files {
		out[i] = fileDescriptor{
			Field:       f.Field,
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        len(f.Content),
		}
	}
	return out
}
