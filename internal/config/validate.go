package config

import (
	"errors"
	"fmt"
	"strings"
)

// Output formats understood by the renderer.
var outputFormats = []string{"table", "json", "csv", "markdown", "yaml"}

// Validate ensures the configuration is usable. It does not require
// credentials so commands such as `config init` work on a fresh machine.
func (c *Config) Validate() error {
	if err := c.validateJira(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials reports whether enough connection details are present
// to talk to the tracker.
func (c *Config) ValidateCredentials() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	hint := fmt.Sprintf("edit %s (create with 'jira config init')", defaultPath)
	if c.Jira.Server == "" {
		return fmt.Errorf("jira.server is required. Set JIRA_SERVER env var or %s", hint)
	}
	if c.Jira.APIToken == "" {
		return fmt.Errorf("jira.api_token is required. Set JIRA_API_TOKEN env var or %s", hint)
	}
	if c.Jira.AuthMethod == AuthBasic && c.Jira.Username == "" {
		return fmt.Errorf("jira.username is required for basic auth. Set JIRA_USERNAME env var or %s", hint)
	}
	return nil
}

func (c *Config) validateJira() error {
	switch c.Jira.AuthMethod {
	case AuthBasic, AuthPAT:
	default:
		return fmt.Errorf("jira.auth_method must be %q or %q, got %q", AuthBasic, AuthPAT, c.Jira.AuthMethod)
	}
	if strings.ContainsAny(c.Jira.Server, " \t") {
		return errors.New("jira.server must not contain whitespace")
	}
	if c.Jira.TimeoutSeconds < 0 {
		return errors.New("jira.timeout_seconds must be positive")
	}
	if c.Jira.PageSize < 1 || c.Jira.PageSize > 1000 {
		return errors.New("jira.page_size must be between 1 and 1000")
	}
	if c.Jira.MaxPages < 1 {
		return errors.New("jira.max_pages must be at least 1")
	}
	return nil
}

func (c *Config) validateOutput() error {
	for _, format := range outputFormats {
		if c.Output.Format == format {
			return nil
		}
	}
	return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(outputFormats, ", "), c.Output.Format)
}

func (c *Config) validateCache() error {
	if c.Cache.TTLMinutes < 0 {
		return errors.New("cache.ttl_minutes must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
