package config

const (
	defaultConfigPath           = "~/.config/jira/config.toml"
	projectConfigName           = "jira.toml"
	defaultAuthMethod           = AuthBasic
	defaultTimeoutSeconds       = 30
	defaultPageSize             = 50
	defaultMaxPages             = 200
	defaultOpenFilter           = "status != Done"
	defaultInProgressTransition = "In Progress"
	defaultBlockedTransition    = "Blocked"
	defaultDoneTransition       = "Done"
	defaultIssueType            = "Task"
	defaultOutputFormat         = "table"
	defaultCacheTTLMinutes      = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Jira: Jira{
			AuthMethod:     defaultAuthMethod,
			TimeoutSeconds: defaultTimeoutSeconds,
			PageSize:       defaultPageSize,
			MaxPages:       defaultMaxPages,
		},
		Issues: Issues{
			OpenFilter:           defaultOpenFilter,
			InProgressTransition: defaultInProgressTransition,
			BlockedTransition:    defaultBlockedTransition,
			DoneTransition:       defaultDoneTransition,
			DefaultType:          defaultIssueType,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Cache: Cache{
			Enabled:    true,
			Dir:        defaultCacheDir(),
			TTLMinutes: defaultCacheTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
