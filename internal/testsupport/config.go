package testsupport

import (
	"path/filepath"
	"testing"

	"jira/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults credentials to a fake server and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Jira.Server = "jira.example.test"
	cfgVal.Jira.Username = "tester@example.test"
	cfgVal.Jira.APIToken = "test-token"
	cfgVal.Jira.Project = "DEMO"
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.Cache.Enabled = false
	cfgVal.Output.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServer points the config at a test server URL.
func WithServer(server string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jira.Server = server
	}
}

// WithProject overrides the default project key.
func WithProject(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jira.Project = key
	}
}

// WithOutputFormat overrides the default output format.
func WithOutputFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Format = format
	}
}

// WithCache enables the project cache with the given ttl in minutes.
func WithCache(ttlMinutes int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
		b.cfg.Cache.TTLMinutes = ttlMinutes
	}
}

// WithoutCredentials clears every credential field.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jira.Server = ""
		b.cfg.Jira.Username = ""
		b.cfg.Jira.APIToken = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Cache.Dir)
}
