package restclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"
	krpretty "github.com/kr/pretty"
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var prettyOptions = &pretty.Options{Width: 80, Indent: "    "}

// logRequest writes one Info entry per present part of the request, in a
// fixed order: addr, method, headers, params, data, json, files, cookies.
func logRequest(logger hclog.Logger, url, method string, body []byte, jsonBody any, opts *Options) {
	l := logger.With("request_id", ulid.Make().String())

	l.Info("request addr", "addr", url)
	l.Info("request method", "method", method)
	if headers := opts.headers(); headers != nil {
		l.Info("request headers", "headers", prettyJSON(headers))
	}
	if params := opts.params(); params != nil {
		l.Info("request params", "params", prettyJSON(params))
	}
	if body != nil {
		l.Info("request data", "data", prettyRawBody(body))
	}
	if jsonBody != nil {
		l.Info("request json", "json", prettyJSON(jsonBody))
	}
	if files := opts.files(); files != nil {
		l.Info("request files", "files", krpretty.Sprintf("%# v", describeFiles(files)))
	}
	if cookies := opts.cookies(); cookies != nil {
		l.Info("request cookies", "cookies", prettyJSON(cookieParams(cookies)))
	}
}

// prettyJSON indents v's JSON form. Non-ASCII text is kept verbatim.
func prettyJSON(v any) string {
	encoded, err := marshalJSON(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(trimNewline(pretty.PrettyOptions(encoded, prettyOptions)))
}

// prettyRawBody indents a raw body that holds JSON and quotes anything else.
func prettyRawBody(body []byte) string {
	if gjson.ValidBytes(body) {
		return prettyJSON(json.RawMessage(body))
	}
	return prettyJSON(string(body))
}

func cookieParams(cookies []*http.Cookie) Params {
	params := make(Params, 0, len(cookies))
	for _, c := range cookies {
		if c != nil {
			params = append(params, Param{Key: c.Name, Value: c.Value})
		}
	}
	return params
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	return b
}
