package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jibudata/dbgen/internal/config"
	"github.com/jibudata/dbgen/internal/metrics"
	"github.com/jibudata/dbgen/internal/users"
)

type fakeStore struct {
	listed  []json.RawMessage
	listErr error
	added   []users.User
	addErr  error
	// failAfter makes Add fail once this many users were added; zero disables it.
	failAfter int
	onAdd     func()
}

func (f *fakeStore) NewUser(prefix string) users.User {
	return users.User{Name: prefix + "now", Age: 10 + len(f.added)}
}

func (f *fakeStore) Add(ctx context.Context, u users.User) (json.RawMessage, error) {
	if f.failAfter > 0 && len(f.added) >= f.failAfter {
		return nil, f.addErr
	}
	f.added = append(f.added, u)
	if f.onAdd != nil {
		f.onAdd()
	}
	data, _ := json.Marshal(map[string]any{"id": len(f.added), "name": u.Name, "age": u.Age})
	return data, nil
}

func (f *fakeStore) List(ctx context.Context) ([]json.RawMessage, error) {
	return f.listed, f.listErr
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type fixedStats struct{}

func (fixedStats) Stats() metrics.Stats {
	return metrics.Stats{Total: 3, Successes: 3}
}

func TestDumpPrintsOneLinePerRecord(t *testing.T) {
	store := &fakeStore{listed: []json.RawMessage{json.RawMessage(`{"id": 1, "name": "a"}`)}}
	var out bytes.Buffer

	if err := New(store, Options{}).Dump(context.Background(), &out); err != nil {
		t.Fatalf("Dump error = %v", err)
	}
	if out.String() != "{\"id\":1,\"name\":\"a\"}\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestDumpEmptyList(t *testing.T) {
	var out bytes.Buffer
	if err := New(&fakeStore{}, Options{}).Dump(context.Background(), &out); err != nil {
		t.Fatalf("Dump error = %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestDumpReturnsListError(t *testing.T) {
	boom := errors.New("boom")
	var out bytes.Buffer
	err := New(&fakeStore{listErr: boom}, Options{}).Dump(context.Background(), &out)
	if !errors.Is(err, boom) {
		t.Fatalf("expected list error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output on error, got %q", out.String())
	}
}

func TestInsertPrintsSavedRecordsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &fakeStore{}
	store.onAdd = func() {
		if len(store.added) == 3 {
			cancel()
		}
	}
	pacer := &countingPacer{}
	var out bytes.Buffer

	err := New(store, Options{NamePrefix: "test-", Pacer: pacer}).Insert(ctx, &out)
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 saved lines, got %q", out.String())
	}
	if lines[0] != `saved db record: {"age":10,"id":1,"name":"test-now"}` {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if pacer.waits != 4 {
		t.Fatalf("expected a wait before every insert, got %d waits", pacer.waits)
	}
	for _, u := range store.added {
		if !strings.HasPrefix(u.Name, "test-") {
			t.Fatalf("unexpected name %q", u.Name)
		}
	}
}

func TestInsertStopsOnFirstError(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{failAfter: 2, addErr: boom}
	var out bytes.Buffer

	err := New(store, Options{Pacer: &countingPacer{}}).Insert(context.Background(), &out)
	if !errors.Is(err, boom) {
		t.Fatalf("expected add error, got %v", err)
	}
	if strings.Count(out.String(), "saved db record: ") != 2 {
		t.Fatalf("expected two saved records before failing, got %q", out.String())
	}
}

func TestInsertCancelledDuringWaitReturnsQuickly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	store := &fakeStore{}
	start := time.Now()
	err := New(store, Options{Interval: time.Hour}).Insert(ctx, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Insert took %v after cancellation", elapsed)
	}
	if len(store.added) != 0 {
		t.Fatalf("expected no inserts, got %d", len(store.added))
	}
}

func TestInsertLogsSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Info})
	err := New(&fakeStore{}, Options{Pacer: &countingPacer{}, Logger: logger, Stats: fixedStats{}}).Insert(ctx, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if !strings.Contains(logs.String(), "insert summary") || !strings.Contains(logs.String(), "total=3") {
		t.Fatalf("expected summary in logs:\n%s", logs.String())
	}
}

func TestRunDispatchesModes(t *testing.T) {
	store := &fakeStore{listed: []json.RawMessage{json.RawMessage(`{"id":1}`)}}
	var out bytes.Buffer
	g := New(store, Options{})

	if err := g.Run(context.Background(), config.ModeDump, &out); err != nil {
		t.Fatalf("Run dump error = %v", err)
	}
	if out.String() != "{\"id\":1}\n" {
		t.Fatalf("unexpected dump output %q", out.String())
	}
	if err := g.Run(context.Background(), config.Mode("bogus"), &out); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestIntervalPacerSleepsBeforeFirstInsert(t *testing.T) {
	pacer := NewIntervalPacer(60 * time.Millisecond)

	start := time.Now()
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("first Wait returned after %v, expected about one interval", elapsed)
	}
}

func TestIntervalPacerHonoursCancelledContext(t *testing.T) {
	pacer := NewIntervalPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pacer.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
