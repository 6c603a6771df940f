package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records per-request metrics in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	byMethod     map[string]int64
	errorsByType map[string]int64
	start        time.Time
	now          func() time.Time
}

// Stats represents aggregated metrics.
type Stats struct {
	Total       int64            `json:"total"`
	Successes   int64            `json:"successes"`
	Failures    int64            `json:"failures"`
	MinLatency  time.Duration    `json:"min_latency"`
	MaxLatency  time.Duration    `json:"max_latency"`
	MeanLatency time.Duration    `json:"mean_latency"`
	P50Latency  time.Duration    `json:"p50_latency"`
	P90Latency  time.Duration    `json:"p90_latency"`
	P99Latency  time.Duration    `json:"p99_latency"`
	Elapsed     time.Duration    `json:"elapsed"`
	Methods     map[string]int64 `json:"methods,omitempty"`
	Errors      map[string]int64 `json:"errors,omitempty"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:         h,
		byMethod:     make(map[string]int64),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
		now:          time.Now,
	}
}

// RecordRequest records a single call's latency and error state.
func (c *Collector) RecordRequest(method string, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	c.byMethod[method]++
	if err == nil {
		c.successes++
	} else {
		c.failures++
		c.errorsByType[FriendlyErrorName(fmt.Sprintf("%T", err))]++
	}
}

// Stats computes the current aggregate.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
		Elapsed:    c.now().Sub(c.start),
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	if len(c.byMethod) > 0 {
		stats.Methods = make(map[string]int64, len(c.byMethod))
		for k, v := range c.byMethod {
			stats.Methods[k] = v
		}
	}
	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int64, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = v
		}
	}

	return stats
}

// LogArgs flattens the stats into hclog key/value pairs.
func (s Stats) LogArgs() []interface{} {
	args := []interface{}{
		"total", s.Total,
		"successes", s.Successes,
		"failures", s.Failures,
		"elapsed", s.Elapsed.Round(time.Millisecond),
	}
	if s.Total > 0 {
		args = append(args,
			"min", s.MinLatency,
			"mean", s.MeanLatency,
			"p50", s.P50Latency,
			"p90", s.P90Latency,
			"p99", s.P99Latency,
			"max", s.MaxLatency,
		)
	}
	for _, name := range sortedKeys(s.Errors) {
		args = append(args, "error."+name, s.Errors[name])
	}
	return args
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
