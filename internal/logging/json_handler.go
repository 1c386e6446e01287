package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

const redacted = "********"

// secretKeys are attribute keys whose values never reach a log sink.
var secretKeys = map[string]bool{
	"api_token":     true,
	"token":         true,
	"password":      true,
	"authorization": true,
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch attr.Key {
		case slog.TimeKey:
			attr.Key = "ts"
			if attr.Value.Kind() == slog.KindTime {
				attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
			}
			return attr
		case slog.LevelKey:
			attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			return attr
		}
	}
	if secretKeys[strings.ToLower(attr.Key)] {
		attr.Value = slog.StringValue(redacted)
	}
	return attr
}
