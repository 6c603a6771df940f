// Package logging builds the hclog logger injected into the REST client and the generator.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jibudata/dbgen/internal/config"
)

// ParseLevel maps a configured level name onto an hclog level.
func ParseLevel(name string) (hclog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info", "notice":
		return hclog.Info, nil
	case "trace":
		return hclog.Trace, nil
	case "debug":
		return hclog.Debug, nil
	case "warn", "warning":
		return hclog.Warn, nil
	case "err", "error":
		return hclog.Error, nil
	default:
		return hclog.NoLevel, fmt.Errorf("unknown log level: %s", name)
	}
}

// New returns a named logger writing to w.
func New(cfg config.LogConfig, w io.Writer) (hclog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return newLogger("dbgen", level, cfg.Format, w), nil
}

// NewRequestLogger returns the logger handed to the REST client. The request
// log is always written, so warn and error are lowered to info here; trace
// and debug pass through.
func NewRequestLogger(cfg config.LogConfig, w io.Writer) (hclog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level > hclog.Info {
		level = hclog.Info
	}
	return newLogger("dbgen.request", level, cfg.Format, w), nil
}

func newLogger(name string, level hclog.Level, format config.LogFormat, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     w,
		JSONFormat: format == config.LogFormatJSON,
	})
}
