package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jibudata/dbgen/internal/config"
	"github.com/jibudata/dbgen/internal/generator"
	"github.com/jibudata/dbgen/internal/logging"
	"github.com/jibudata/dbgen/internal/metrics"
	"github.com/jibudata/dbgen/internal/restclient"
	"github.com/jibudata/dbgen/internal/tracing"
	"github.com/jibudata/dbgen/internal/users"
)

const (
	shutdownTimeout = 5 * time.Second
	// interruptedShutdownTimeout bounds the span flush after a signal.
	interruptedShutdownTimeout = 100 * time.Millisecond
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run returns the process exit code. Usage goes to stdout, diagnostics to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrUsage) {
			config.PrintUsage(stdout)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := execute(ctx, cfg, stdout, stderr); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), flushTimeout(ctx))
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	requestLogger, err := logging.NewRequestLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	client := newClient(cfg, requestLogger, provider, collector)

	var reqOpts *restclient.Options
	if len(cfg.Headers) > 0 {
		reqOpts = &restclient.Options{Headers: cfg.Headers}
	}

	if cfg.LoginPath != "" {
		if _, err := client.Login(ctx, cfg.LoginPath, reqOpts); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		logger.Debug("login succeeded", "path", cfg.LoginPath)
	}

	svc := users.NewService(client, users.WithRequestOptions(reqOpts))
	gen := generator.New(svc, generator.Options{
		Interval:   cfg.Interval,
		NamePrefix: cfg.NamePrefix,
		Logger:     logger,
		Stats:      collector,
	})

	logger.Debug("starting", "mode", cfg.Mode, "base_url", cfg.BaseURL, "interval", cfg.Interval)
	return gen.Run(ctx, cfg.Mode, stdout)
}

// flushTimeout shortens the tracing shutdown once ctx was cancelled.
func flushTimeout(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return interruptedShutdownTimeout
	}
	return shutdownTimeout
}

func newClient(cfg *config.Config, logger hclog.Logger, provider *tracing.Provider, recorder restclient.Recorder) *restclient.Client {
	httpClient := restclient.NewHTTPClient()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	opts := []restclient.ClientOption{
		restclient.WithLogger(logger),
		restclient.WithHTTPClient(httpClient),
		restclient.WithRecorder(recorder),
	}
	if provider.Enabled() || provider.ShouldPropagate() {
		opts = append(opts, restclient.WithTracer(provider.Tracer(), provider.ShouldPropagate()))
	}
	return restclient.New(cfg.BaseURL, opts...)
}
