package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces every environment override.
const envPrefix = "DBGEN"

// ErrUsage is returned when the command line does not select exactly one mode.
var ErrUsage = errors.New("invalid arguments")

// Loader handles loading configuration from the command line, a config file and the environment.
type Loader struct{}

type envSetting struct {
	key  string
	help string
}

var envSettings = []envSetting{
	{"config", "Path to a JSON, YAML or TOML configuration file"},
	{"base_url", "Base URL of the user service (default " + DefaultBaseURL + ")"},
	{"interval", "Delay between inserts, e.g. 3s (default 3s)"},
	{"timeout", "Per-request timeout, 0 disables it"},
	{"name_prefix", "Prefix of generated user names (default " + DefaultNamePrefix + ")"},
	{"login_path", "Path probed with GET before running; empty skips the probe"},
	{"log.level", "trace, debug, info, warn or error (default info)"},
	{"log.format", "standard or json (default standard)"},
	{"tracing.endpoint", "OTLP collector endpoint; empty disables export"},
	{"tracing.protocol", "grpc or http (default grpc)"},
	{"tracing.service_name", "Service name reported on spans (default dbgen)"},
	{"tracing.sample_rate", "Sampling ratio between 0.0 and 1.0 (default 1.0)"},
	{"tracing.insecure", "Disable TLS towards the collector"},
	{"tracing.propagate", "Send W3C trace context headers even without an exporter"},
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the single mode argument and layers file and environment settings over the defaults.
func (Loader) Load(args []string) (*Config, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one argument, got %d", ErrUsage, len(args))
	}

	switch args[0] {
	case "--" + string(ModeInsert), "--" + string(ModeDump):
	default:
		return nil, fmt.Errorf("%w: expected --%s or --%s, got %q", ErrUsage, ModeInsert, ModeDump, args[0])
	}

	cmd := newFlagCommand()
	flagSet := cmd.Flags()
	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, flagSet.Arg(0))
	}
	mode, err := modeFromFlags(flagSet)
	if err != nil {
		return nil, err
	}

	cfgViper := viper.New()
	cfgViper.SetEnvPrefix(envPrefix)
	cfgViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, s := range envSettings {
		if err := cfgViper.BindEnv(s.key); err != nil {
			return nil, err
		}
	}

	configPath := strings.TrimSpace(cfgViper.GetString("config"))
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := &Config{
		Mode:       mode,
		BaseURL:    DefaultBaseURL,
		Interval:   DefaultInterval,
		NamePrefix: DefaultNamePrefix,
		Headers:    map[string]string{},
		Log:        LogConfig{Level: "info", Format: LogFormatStandard},
		Tracing:    TracingConfig{SampleRate: 1.0},
		ConfigFile: configPath,
	}

	if err := applySettings(cfg, cfgViper); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = LogFormat(strings.ToLower(strings.TrimSpace(string(cfg.Log.Format))))

	return cfg, nil
}

// lookup returns the raw value for key when the file or the environment sets it.
func lookup(v *viper.Viper, key string) (interface{}, bool) {
	if !v.IsSet(key) {
		return nil, false
	}
	return v.Get(key), true
}

// applySettings copies file and environment values onto cfg.
func applySettings(cfg *Config, v *viper.Viper) error {
	stringFields := []struct {
		key string
		dst *string
	}{
		{"base_url", &cfg.BaseURL},
		{"name_prefix", &cfg.NamePrefix},
		{"login_path", &cfg.LoginPath},
		{"log.level", &cfg.Log.Level},
		{"tracing.endpoint", &cfg.Tracing.Endpoint},
		{"tracing.protocol", &cfg.Tracing.Protocol},
		{"tracing.service_name", &cfg.Tracing.ServiceName},
	}
	for _, f := range stringFields {
		if raw, ok := lookup(v, f.key); ok {
			val, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = val
		}
	}

	if raw, ok := lookup(v, "log.format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("log.format: %w", err)
		}
		cfg.Log.Format = LogFormat(val)
	}

	if raw, ok := lookup(v, "interval"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		cfg.Interval = dur
	}

	if raw, ok := lookup(v, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookup(v, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		for k, val := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(strings.TrimSpace(k))] = val
		}
	}

	if raw, ok := lookup(v, "tracing.sample_rate"); ok {
		rate, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("tracing.sample_rate: %w", err)
		}
		cfg.Tracing.SampleRate = rate
	}

	if raw, ok := lookup(v, "tracing.insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("tracing.insecure: %w", err)
		}
		cfg.Tracing.Insecure = val
	}

	if raw, ok := lookup(v, "tracing.propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("tracing.propagate: %w", err)
		}
		cfg.Tracing.Propagate = val
	}

	return nil
}
