package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"jira/internal/config"
	"jira/internal/dispatch"
	"jira/internal/logging"
	"jira/internal/output"
	"jira/internal/tracker"
	"jira/internal/tracker/cache"
)

// Env is the explicit context handed to handler factories.
type Env struct {
	Config       *config.Config
	ConfigPath   string
	ConfigExists bool
	Logger       *slog.Logger
	// OpenURL launches a browser on url.
	OpenURL func(ctx context.Context, url string) error

	httpClient *http.Client

	svcOnce sync.Once
	svc     tracker.Service
	svcErr  error
	closers []io.Closer
}

// Option configures an Env.
type Option func(*Env)

// WithService injects a ready tracker service, bypassing credential checks.
func WithService(svc tracker.Service) Option {
	return func(e *Env) {
		e.svcOnce.Do(func() { e.svc = svc })
	}
}

// WithHTTPClient sets the HTTP client used by the tracker client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Env) {
		e.httpClient = client
	}
}

// WithURLOpener replaces the browser launcher.
func WithURLOpener(open func(ctx context.Context, url string) error) Option {
	return func(e *Env) {
		if open != nil {
			e.OpenURL = open
		}
	}
}

// WithConfigSource records where the configuration was read from.
func WithConfigSource(path string, exists bool) Option {
	return func(e *Env) {
		e.ConfigPath = path
		e.ConfigExists = exists
	}
}

// New builds an Env around cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Env {
	if logger == nil {
		logger = logging.NewNop()
	}
	env := &Env{
		Config:  cfg,
		Logger:  logger,
		OpenURL: OpenBrowser,
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// Service returns the tracker service, building it on first use.
func (e *Env) Service(ctx context.Context) (tracker.Service, error) {
	e.svcOnce.Do(func() {
		e.svc, e.svcErr = e.buildService(ctx)
	})
	return e.svc, e.svcErr
}

func (e *Env) buildService(ctx context.Context) (tracker.Service, error) {
	cfg := e.Config
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	opts := []tracker.Option{
		tracker.WithTimeout(time.Duration(cfg.Jira.TimeoutSeconds) * time.Second),
		tracker.WithPaging(cfg.Jira.PageSize, cfg.Jira.MaxPages),
		tracker.WithLogger(e.Logger),
	}
	if e.httpClient != nil {
		opts = append(opts, tracker.WithHTTPClient(e.httpClient))
	}
	client, err := tracker.New(cfg.BaseURL(), tracker.Credentials{
		Method:   cfg.Jira.AuthMethod,
		Username: cfg.Jira.Username,
		Token:    cfg.Jira.APIToken,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure tracker client: %w", err)
	}

	if !cfg.Cache.Enabled {
		return client, nil
	}
	store, err := cache.Open(ctx, cfg.Cache.Dir, cfg.BaseURL())
	if err != nil {
		logging.WarnWithContext(e.Logger, "project cache unavailable", "cache_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "project metadata is fetched on every run"),
			logging.String(logging.FieldErrorHint, "check cache.dir permissions or set cache.enabled = false"),
		)
		return client, nil
	}
	e.closers = append(e.closers, store)
	return cache.Wrap(client, store, time.Duration(cfg.Cache.TTLMinutes)*time.Minute, e.Logger), nil
}

// InvalidateCache drops cached project metadata when a cache is in use.
func (e *Env) InvalidateCache(ctx context.Context) error {
	svc, err := e.Service(ctx)
	if err != nil {
		return err
	}
	if inv, ok := svc.(cache.Invalidator); ok {
		return inv.Invalidate(ctx)
	}
	return nil
}

// Close releases resources opened by the service.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// DeclareCommon adds the arguments every action accepts.
func (e *Env) DeclareCommon(s *dispatch.Schema) {
	s.String(FlagOutput, "o", e.Config.Output.Format,
		"Output format ("+strings.Join(output.Formats(), ", ")+")")
}

// Format returns the requested output format.
func (e *Env) Format(inv *dispatch.Invocation) string {
	if format := strings.TrimSpace(inv.String(FlagOutput)); format != "" {
		return strings.ToLower(format)
	}
	return e.Config.Output.Format
}

// Render writes records to the invocation's stdout in the requested format.
func (e *Env) Render(inv *dispatch.Invocation, records []output.Record) error {
	out := inv.Stdout()
	return output.Render(out, e.Format(inv), records, output.Options{Colorize: output.ShouldColorize(out)})
}
