// Package logging assembles structured slog loggers and formatting helpers
// used across the jira CLI.
//
// It owns the console/JSON handlers, routes diagnostics to stderr so command
// output on stdout stays machine readable, and exposes a shared LevelVar so
// the --verbose flag can raise verbosity after the logger is built. Helpers
// such as WarnWithContext make every warning carry its impact and a hint
// for the next step.
package logging
