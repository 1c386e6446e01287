package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeJira()
	c.normalizeIssues()
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeJira() {
	if c.Jira.Server == "" {
		if value, ok := os.LookupEnv("JIRA_SERVER"); ok {
			c.Jira.Server = value
		}
	}
	if c.Jira.Username == "" {
		if value, ok := os.LookupEnv("JIRA_USERNAME"); ok {
			c.Jira.Username = value
		}
	}
	if c.Jira.APIToken == "" {
		if value, ok := os.LookupEnv("JIRA_API_TOKEN"); ok {
			c.Jira.APIToken = value
		}
	}
	if c.Jira.Project == "" {
		if value, ok := os.LookupEnv("JIRA_PROJECT"); ok {
			c.Jira.Project = value
		}
	}
	if value, ok := os.LookupEnv("JIRA_AUTH_METHOD"); ok && strings.TrimSpace(value) != "" {
		c.Jira.AuthMethod = value
	}

	server := strings.TrimSpace(c.Jira.Server)
	server = strings.TrimPrefix(server, "https://")
	c.Jira.Server = strings.TrimRight(server, "/")
	c.Jira.Username = strings.TrimSpace(c.Jira.Username)
	c.Jira.APIToken = strings.TrimSpace(c.Jira.APIToken)
	c.Jira.Project = strings.ToUpper(strings.TrimSpace(c.Jira.Project))
	c.Jira.AuthMethod = strings.ToLower(strings.TrimSpace(c.Jira.AuthMethod))
	if c.Jira.AuthMethod == "" {
		c.Jira.AuthMethod = defaultAuthMethod
	}
	if c.Jira.TimeoutSeconds == 0 {
		c.Jira.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Jira.PageSize == 0 {
		c.Jira.PageSize = defaultPageSize
	}
	if c.Jira.MaxPages == 0 {
		c.Jira.MaxPages = defaultMaxPages
	}
}

func (c *Config) normalizeIssues() {
	c.Issues.OpenFilter = strings.TrimSpace(c.Issues.OpenFilter)
	if c.Issues.OpenFilter == "" {
		c.Issues.OpenFilter = defaultOpenFilter
	}
	c.Issues.InProgressTransition = strings.TrimSpace(c.Issues.InProgressTransition)
	if c.Issues.InProgressTransition == "" {
		c.Issues.InProgressTransition = defaultInProgressTransition
	}
	c.Issues.BlockedTransition = strings.TrimSpace(c.Issues.BlockedTransition)
	if c.Issues.BlockedTransition == "" {
		c.Issues.BlockedTransition = defaultBlockedTransition
	}
	c.Issues.DoneTransition = strings.TrimSpace(c.Issues.DoneTransition)
	if c.Issues.DoneTransition == "" {
		c.Issues.DoneTransition = defaultDoneTransition
	}
	c.Issues.DefaultType = strings.TrimSpace(c.Issues.DefaultType)
	if c.Issues.DefaultType == "" {
		c.Issues.DefaultType = defaultIssueType
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	if c.Cache.Dir, err = expandPath(strings.TrimSpace(c.Cache.Dir)); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Plugins.Dir, err = expandPath(strings.TrimSpace(c.Plugins.Dir)); err != nil {
		return fmt.Errorf("plugins.dir: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
