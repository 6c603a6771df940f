package restclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxSnippetBytes = 1024

// DecodeJSON reads and closes resp.Body and unmarshals it into v. A body that
// is not valid JSON for v yields a *ParseError.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ParseError{
			StatusCode: resp.StatusCode,
			Snippet:    snippet(data),
			Err:        err,
		}
	}
	return nil
}

// CheckStatus returns a *StatusError carrying the start of the body when
// resp has a status of 400 or above. The body is consumed and closed in that case.
func CheckStatus(resp *http.Response) error {
	if successful(resp.StatusCode) {
		return nil
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnippetBytes))
	if err != nil {
		return err
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}

func snippet(data []byte) string {
	if len(data) > maxSnippetBytes {
		data = data[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(data))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxSnippetBytes))
	_ = body.Close()
}
