// Package logger builds the process logger and hands out component entries.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	apiKeyCtxKey    ctxKey = "api_key"
	sessionIDCtxKey ctxKey = "session_id"
)

// New returns a logger configured from level ("debug", "info", ...) and
// format ("text" or "json"). Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, format)
}

func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Component tags every entry with the emitting component.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}

// Discard is used by tests and by callers that pass no logger.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func WithAPIKey(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, apiKeyCtxKey, apiKey)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDCtxKey, sessionID)
}

// FromContext adds the api_key / session_id carried by ctx to base.
func FromContext(ctx context.Context, base *logrus.Entry) *logrus.Entry {
	entry := base.WithContext(ctx)
	if v, ok := ctx.Value(apiKeyCtxKey).(string); ok && v != "" {
		entry = entry.WithField("api_key", v)
	}
	if v, ok := ctx.Value(sessionIDCtxKey).(string); ok && v != "" {
		entry = entry.WithField("session_id", v)
	}
	return entry
}
