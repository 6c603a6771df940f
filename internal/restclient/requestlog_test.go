package restclient

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestRequestLogsHeadersAndParamsOnly(t *testing.T) {
	var logs bytes.Buffer
	client := New("http://svc", WithSession(&fakeSession{}), WithLogger(newTestLogger(&logs)))

	opts := &Options{
		Headers: map[string]string{"X": "1"},
		Params:  NewParams("q", "2"),
	}
	resp, err := client.Get(context.Background(), "/user/all", opts)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	resp.Body.Close()

	out := logs.String()
	for _, want := range []string{"request addr", "http://svc/user/all", "request method", "GET", `"X": "1"`, `"q": "2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"request data", "request json", "request files", "request cookies"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("log output should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestRequestLogOrderAndAllParts(t *testing.T) {
	var logs bytes.Buffer
	client := New("http://svc", WithSession(&fakeSession{}), WithLogger(newTestLogger(&logs)))

	opts := &Options{
		Headers: map[string]string{"Accept": "application/json"},
		Params:  NewParams("page", "1"),
		Files:   []File{{Field: "upload", Name: "rows.csv", ContentType: "text/csv", Content: []byte("a,b\n")}},
		Cookies: []*http.Cookie{{Name: "sid", Value: "s1"}},
	}
	resp, err := client.Post(context.Background(), "/user/add", []byte(`{"raw":true}`), map[string]any{"name": "n"}, opts)
	if err != nil {
		t.Fatalf("Post error = %v", err)
	}
	resp.Body.Close()

	out := logs.String()
	order := []string{
		"request addr", "request method", "request headers", "request params",
		"request data", "request json", "request files", "request cookies",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		if idx < 0 {
			t.Fatalf("log output missing %q:\n%s", marker, out)
		}
		if idx < last {
			t.Fatalf("%q logged out of order:\n%s", marker, out)
		}
		last = idx
	}

	if !strings.Contains(out, `"raw": true`) {
		t.Errorf("raw JSON body should be pretty printed:\n%s", out)
	}
	if !strings.Contains(out, `"sid": "s1"`) {
		t.Errorf("cookies should be logged as JSON:\n%s", out)
	}
	if !strings.Contains(out, "fileDescriptor") || !strings.Contains(out, `"rows.csv"`) || !strings.Contains(out, "Size:") {
		t.Errorf("files should be logged with their raw representation:\n%s", out)
	}
	if strings.Contains(out, "a,b") {
		t.Errorf("file content should not be logged:\n%s", out)
	}
	if strings.Count(out, "request_id=") != len(order) {
		t.Errorf("expected every entry to carry one request_id:\n%s", out)
	}
}

func TestRequestLogKeepsNonASCII(t *testing.T) {
	var logs bytes.Buffer
	client := New("http://svc", WithSession(&fakeSession{}), WithLogger(newTestLogger(&logs)))

	resp, err := client.Post(context.Background(), "/user/add", nil, map[string]string{"name": "张三 <ü>"}, nil)
	if err != nil {
		t.Fatalf("Post error = %v", err)
	}
	resp.Body.Close()

	out := logs.String()
	if !strings.Contains(out, `"name": "张三 <ü>"`) {
		t.Fatalf("expected non-ASCII text verbatim:\n%s", out)
	}
	if strings.Contains(out, `\u`) {
		t.Fatalf("expected no unicode escapes:\n%s", out)
	}
}

func TestRequestLogQuotesNonJSONBody(t *testing.T) {
	var logs bytes.Buffer
	client := New("http://svc", WithSession(&fakeSession{}), WithLogger(newTestLogger(&logs)))

	resp, err := client.Put(context.Background(), "/note", []byte("plain text"), nil, nil)
	if err != nil {
		t.Fatalf("Put error = %v", err)
	}
	resp.Body.Close()

	if !strings.Contains(logs.String(), `plain text`) {
		t.Fatalf("expected raw body in log:\n%s", logs.String())
	}
}

func TestPrettyJSONIndentsWithFourSpaces(t *testing.T) {
	got := prettyJSON(map[string]string{"a": "1"})
	want := "{\n    \"a\": \"1\"\n}"
	if got != want {
		t.Fatalf("prettyJSON = %q, want %q", got, want)
	}
}

func TestPrettyJSONKeepsParamOrder(t *testing.T) {
	got := prettyJSON(NewParams("z", "1", "a", "2"))
	if strings.Index(got, `"z"`) > strings.Index(got, `"a"`) {
		t.Fatalf("expected insertion order, got %s", got)
	}
}

func TestPrettyJSONFallsBackForUnencodableValues(t *testing.T) {
	got := prettyJSON(map[string]any{"ch": make(chan int)})
	if got == "" {
		t.Fatal("expected a fallback rendering")
	}
}
