package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Auth methods accepted by the tracker client.
const (
	AuthBasic = "basic"
	AuthPAT   = "pat"
)

// Jira contains connection settings for the issue tracker.
type Jira struct {
	Server         string `toml:"server"`
	Username       string `toml:"username"`
	AuthMethod     string `toml:"auth_method"`
	APIToken       string `toml:"api_token"`
	Project        string `toml:"project"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PageSize       int    `toml:"page_size"`
	MaxPages       int    `toml:"max_pages"`
}

// Issues contains workflow names and filters used by the issue commands.
type Issues struct {
	// OpenFilter is the JQL predicate that selects unfinished issues.
	OpenFilter           string `toml:"open_filter"`
	InProgressTransition string `toml:"in_progress_transition"`
	BlockedTransition    string `toml:"blocked_transition"`
	DoneTransition       string `toml:"done_transition"`
	DefaultType          string `toml:"default_type"`
}

// Output contains rendering defaults.
type Output struct {
	Format string `toml:"format"`
}

// Plugins points at an optional directory of additional command manifests.
type Plugins struct {
	Dir string `toml:"dir"`
}

// Cache contains configuration for the project metadata cache.
type Cache struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for the jira CLI.
//
// Configuration sections:
//   - Jira: server connection, credentials, default project, paging
//   - Issues: transition names and the open-issue filter
//   - Output: default output format
//   - Plugins: extra command manifest directory
//   - Cache: project metadata cache
//   - Logging: log format, level, and optional file sink
type Config struct {
	Jira    Jira    `toml:"jira"`
	Issues  Issues  `toml:"issues"`
	Output  Output  `toml:"output"`
	Plugins Plugins `toml:"plugins"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment fallbacks applied and paths expanded. Credentials are
// not checked here; see ValidateCredentials.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// BaseURL returns the server address with a scheme. Servers stored without
// one are assumed to speak https.
func (c *Config) BaseURL() string {
	server := strings.TrimRight(strings.TrimSpace(c.Jira.Server), "/")
	if server == "" {
		return ""
	}
	if strings.HasPrefix(server, "http://") || strings.HasPrefix(server, "https://") {
		return server
	}
	return "https://" + server
}

// Redacted returns a copy with secrets masked, suitable for display.
func (c *Config) Redacted() Config {
	out := *c
	if out.Jira.APIToken != "" {
		out.Jira.APIToken = "********"
	}
	return out
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "jira")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/jira"
	}
	return filepath.Join(home, ".cache", "jira")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
