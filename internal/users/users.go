// Package users wraps the user data service endpoints on top of the REST client.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/jibudata/dbgen/internal/restclient"
)

const (
	MinAge = 10
	MaxAge = 50

	// TimestampLayout renders e.g. 19-Oct-2026 (14:03:07.120391).
	TimestampLayout = "02-Jan-2006 (15:04:05.000000)"
)

// User is the record body accepted by POST /user/add.
type User struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// API is the subset of *restclient.Client the service needs.
type API interface {
	Get(ctx context.Context, path string, opts *restclient.Options) (*http.Response, error)
	Post(ctx context.Context, path string, body []byte, jsonBody any, opts *restclient.Options) (*http.Response, error)
}

// Service issues user requests one at a time.
type Service struct {
	api  API
	opts *restclient.Options
	now  func() time.Time
	rand *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now when naming generated users.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRand sets the source of generated ages.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rand = r
	}
}

// WithRequestOptions attaches opts, typically default headers, to every call.
func WithRequestOptions(opts *restclient.Options) Option {
	return func(s *Service) {
		s.opts = opts
	}
}

func NewService(api API, opts ...Option) *Service {
	s := &Service{api: api, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewUser builds a record named prefix plus the current timestamp with an
// age drawn uniformly from [MinAge, MaxAge].
func (s *Service) NewUser(prefix string) User {
	return User{
		Name: prefix + s.now().Format(TimestampLayout),
		Age:  MinAge + s.intN(MaxAge-MinAge+1),
	}
}

func (s *Service) intN(n int) int {
	if s.rand != nil {
		return s.rand.IntN(n)
	}
	return rand.IntN(n)
}

// Add posts u as JSON and returns the stored record.
func (s *Service) Add(ctx context.Context, u User) (json.RawMessage, error) {
	resp, err := s.api.Post(ctx, "/user/add", nil, u, s.opts)
	if err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	return decodeRecord(resp, "add user")
}

// List returns every stored record in service order.
func (s *Service) List(ctx context.Context) ([]json.RawMessage, error) {
	resp, err := s.api.Get(ctx, "/user/all", s.opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if err := restclient.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var records []json.RawMessage
	if err := restclient.DecodeJSON(resp, &records); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id string) (json.RawMessage, error) {
	resp, err := s.api.Get(ctx, "/user/"+id, s.opts)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return decodeRecord(resp, "get user "+id)
}

// Delete is a POST; the service exposes no DELETE route.
func (s *Service) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	resp, err := s.api.Post(ctx, "/user/delete/"+id, nil, nil, s.opts)
	if err != nil {
		return nil, fmt.Errorf("delete user %s: %w", id, err)
	}
	return decodeRecord(resp, "delete user "+id)
}

func decodeRecord(resp *http.Response, op string) (json.RawMessage, error) {
	if err := restclient.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var record json.RawMessage
	if err := restclient.DecodeJSON(resp, &record); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

// RecordID returns the server-assigned id of a record, if it has one.
func RecordID(record json.RawMessage) (string, bool) {
	id := gjson.GetBytes(record, "id")
	if !id.Exists() {
		return "", false
	}
	return id.String(), true
}

// Compact strips insignificant whitespace from a record for one-line output.
func Compact(record json.RawMessage) string {
	return string(pretty.Ugly(record))
}
