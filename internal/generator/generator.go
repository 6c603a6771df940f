// Package generator implements the dump and insert modes of dbgen.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jibudata/dbgen/internal/config"
	"github.com/jibudata/dbgen/internal/metrics"
	"github.com/jibudata/dbgen/internal/users"
)

// Store is the user service surface the generator drives.
type Store interface {
	NewUser(prefix string) users.User
	Add(ctx context.Context, u users.User) (json.RawMessage, error)
	List(ctx context.Context) ([]json.RawMessage, error)
}

// StatsSource reports request metrics for the exit summary.
type StatsSource interface {
	Stats() metrics.Stats
}

// Generator runs one mode against a user service.
type Generator struct {
	store      Store
	logger     hclog.Logger
	namePrefix string
	pacer      Pacer
	stats      StatsSource
}

// Options configures a Generator. Zero values fall back to the defaults.
type Options struct {
	Interval   time.Duration
	NamePrefix string
	Logger     hclog.Logger
	Stats      StatsSource
	// Pacer overrides the interval limiter.
	Pacer Pacer
}

func New(store Store, opts Options) *Generator {
	g := &Generator{
		store:      store,
		logger:     opts.Logger,
		namePrefix: opts.NamePrefix,
		pacer:      opts.Pacer,
		stats:      opts.Stats,
	}
	if g.logger == nil {
		g.logger = hclog.NewNullLogger()
	}
	if g.namePrefix == "" {
		g.namePrefix = config.DefaultNamePrefix
	}
	if g.pacer == nil {
		interval := opts.Interval
		if interval <= 0 {
			interval = config.DefaultInterval
		}
		g.pacer = NewIntervalPacer(interval)
	}
	return g
}

// Run dispatches to the mode's implementation.
func (g *Generator) Run(ctx context.Context, mode config.Mode, w io.Writer) error {
	switch mode {
	case config.ModeDump:
		return g.Dump(ctx, w)
	case config.ModeInsert:
		return g.Insert(ctx, w)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// Dump prints every stored record on its own line.
func (g *Generator) Dump(ctx context.Context, w io.Writer) error {
	records, err := g.store.List(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		if _, err := fmt.Fprintln(w, users.Compact(record)); err != nil {
			return err
		}
	}
	g.logger.Debug("dump complete", "records", len(records))
	return nil
}

// Insert adds one generated user per interval until ctx is done, printing
// each saved record. Cancellation ends the loop with a nil error; any other
// failure ends it with that error.
func (g *Generator) Insert(ctx context.Context, w io.Writer) error {
	defer g.logSummary()

	for {
		if err := g.pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		record, err := g.store.Add(ctx, g.store.NewUser(g.namePrefix))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if id, ok := users.RecordID(record); ok {
			g.logger.Debug("user saved", "id", id)
		}
		if _, err := fmt.Fprintf(w, "saved db record: %s\n", users.Compact(record)); err != nil {
			return err
		}
	}
}

func (g *Generator) logSummary() {
	if g.stats == nil {
		return
	}
	g.logger.Info("insert summary", g.stats.Stats().LogArgs()...)
}
