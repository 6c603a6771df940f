package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mode selects what the generator does once the client is ready.
type Mode string

const (
	ModeInsert Mode = "insert"
	ModeDump   Mode = "dump"
)

const (
	DefaultBaseURL    = "http://127.0.0.1:30176/jibu"
	DefaultInterval   = 3 * time.Second
	DefaultNamePrefix = "test-"
)

type Config struct {
	Mode       Mode              `mapstructure:"-"`
	BaseURL    string            `mapstructure:"base_url"`
	Interval   time.Duration     `mapstructure:"interval"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	NamePrefix string            `mapstructure:"name_prefix"`
	LoginPath  string            `mapstructure:"login_path"`
	Headers    map[string]string `mapstructure:"headers"`
	Log        LogConfig         `mapstructure:"log"`
	Tracing    TracingConfig     `mapstructure:"tracing"`
	ConfigFile string            `mapstructure:"-"`
}

type LogFormat string

const (
	LogFormatStandard LogFormat = "standard"
	LogFormatJSON     LogFormat = "json"
)

type LogConfig struct {
	Level  string    `mapstructure:"level"`
	Format LogFormat `mapstructure:"format"`
}

// TracingConfig controls OpenTelemetry export of client spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether trace context headers go out on requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled() || t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	switch c.Mode {
	case ModeInsert, ModeDump:
	default:
		issues = append(issues, fmt.Sprintf("unknown mode %q", c.Mode))
	}

	if strings.TrimSpace(c.BaseURL) == "" {
		issues = append(issues, "base_url is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("base_url %q is not an absolute URL", c.BaseURL))
	}

	if c.Interval <= 0 {
		issues = append(issues, "interval must be greater than zero")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be zero or positive")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", LogFormatStandard, LogFormatJSON:
	default:
		issues = append(issues, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}
	switch strings.ToLower(c.Tracing.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("unsupported tracing protocol %q", c.Tracing.Protocol))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
