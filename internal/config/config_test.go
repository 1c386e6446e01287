package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jira/internal/config"
)

func clearJiraEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"JIRA_SERVER", "JIRA_USERNAME", "JIRA_API_TOKEN", "JIRA_PROJECT", "JIRA_AUTH_METHOD", "XDG_CACHE_HOME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	clearJiraEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())
	t.Setenv("JIRA_SERVER", "https://jira.example.com/")
	t.Setenv("JIRA_API_TOKEN", "secret")
	t.Setenv("JIRA_USERNAME", "dev@example.com")
	t.Setenv("JIRA_PROJECT", "proj")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "jira", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Jira.Server != "jira.example.com" {
		t.Fatalf("expected scheme and trailing slash stripped, got %q", cfg.Jira.Server)
	}
	if cfg.BaseURL() != "https://jira.example.com" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL())
	}
	if cfg.Jira.Project != "PROJ" {
		t.Fatalf("expected upper-cased project, got %q", cfg.Jira.Project)
	}
	if cfg.Cache.Dir != filepath.Join(tempHome, ".cache", "jira") {
		t.Fatalf("unexpected cache dir %q", cfg.Cache.Dir)
	}
	if cfg.Issues.OpenFilter != "status != Done" {
		t.Fatalf("unexpected open filter %q", cfg.Issues.OpenFilter)
	}
	if cfg.Jira.PageSize != 50 {
		t.Fatalf("unexpected page size %d", cfg.Jira.PageSize)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("ValidateCredentials returned error: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearJiraEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Jira struct {
			Server     string `toml:"server"`
			AuthMethod string `toml:"auth_method"`
			APIToken   string `toml:"api_token"`
		} `toml:"jira"`
		Output struct {
			Format string `toml:"format"`
		} `toml:"output"`
		Plugins struct {
			Dir string `toml:"dir"`
		} `toml:"plugins"`
	}{}
	payload.Jira.Server = "http://localhost:8080"
	payload.Jira.AuthMethod = "PAT"
	payload.Jira.APIToken = "pat-token"
	payload.Output.Format = "JSON"
	payload.Plugins.Dir = "~/plugins"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected %q to be used, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Jira.AuthMethod != config.AuthPAT {
		t.Fatalf("expected pat auth, got %q", cfg.Jira.AuthMethod)
	}
	if cfg.BaseURL() != "http://localhost:8080" {
		t.Fatalf("expected explicit http scheme kept, got %q", cfg.BaseURL())
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("expected lower-cased output format, got %q", cfg.Output.Format)
	}
	if cfg.Plugins.Dir != filepath.Join(tempHome, "plugins") {
		t.Fatalf("unexpected plugins dir %q", cfg.Plugins.Dir)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("pat auth should not need a username: %v", err)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearJiraEnv(t)
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[jira\nserver = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	cases := map[string]func(*config.Config){
		"auth":    func(c *config.Config) { c.Jira.AuthMethod = "oauth" },
		"output":  func(c *config.Config) { c.Output.Format = "xml" },
		"log":     func(c *config.Config) { c.Logging.Format = "text" },
		"level":   func(c *config.Config) { c.Logging.Level = "trace" },
		"page":    func(c *config.Config) { c.Jira.PageSize = 0 },
		"pages":   func(c *config.Config) { c.Jira.MaxPages = 0 },
		"timeout": func(c *config.Config) { c.Jira.TimeoutSeconds = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateCredentialsMissingFields(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateCredentials()
	if err == nil || !strings.Contains(err.Error(), "jira.server") {
		t.Fatalf("expected server error, got %v", err)
	}
	cfg.Jira.Server = "example.atlassian.net"
	cfg.Jira.APIToken = "token"
	err = cfg.ValidateCredentials()
	if err == nil || !strings.Contains(err.Error(), "jira.username") {
		t.Fatalf("expected username error, got %v", err)
	}
}

func TestRedactedMasksToken(t *testing.T) {
	cfg := config.Default()
	cfg.Jira.APIToken = "secret"
	redacted := cfg.Redacted()
	if redacted.Jira.APIToken == "secret" {
		t.Fatal("expected token to be masked")
	}
	if cfg.Jira.APIToken != "secret" {
		t.Fatal("Redacted must not mutate the receiver")
	}
	data, err := redacted.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("marshaled config leaks token:\n%s", data)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	clearJiraEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Jira.Project != "PROJ" {
		t.Fatalf("unexpected sample project %q", cfg.Jira.Project)
	}
}
