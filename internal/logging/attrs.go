package logging

import (
	"log/slog"
	"time"
)

// Attr is the attribute type accepted by every helper in this package.
type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Duration records d in milliseconds so JSON lines stay numeric.
func Duration(key string, d time.Duration) Attr {
	return slog.Int64(key+"_ms", d.Milliseconds())
}

// Issue tags a line with the issue key it concerns.
func Issue(key string) Attr { return slog.String(FieldIssue, key) }

// Project tags a line with a project key.
func Project(key string) Attr { return slog.String(FieldProject, key) }

func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger scopes logger to a component; the console handler
// renders it as the line prefix. A nil logger yields a nop logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
