package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/cameronmore/go-apiauth/config"
)

// Redaction replaces the value of every personally identifying attribute.
const Redaction = "***"

// PIIFields are the attribute keys whose values never reach the log output.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

// Logger wraps slog.Logger with the service's default fields and PII
// redaction. It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to the configured output.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	return NewWithWriter(output, cfg, version)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redactPII,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "apiauth"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var piiKeys = func() map[string]bool {
	m := make(map[string]bool, len(PIIFields))
	for _, f := range PIIFields {
		m[f] = true
	}
	return m
}()

var piiInMessage = regexp.MustCompile(`\b(` + strings.Join(PIIFields, "|") + `)=([^;\s]*)`)

func redactPII(_ []string, a slog.Attr) slog.Attr {
	if piiKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redaction)
	}
	if a.Key == slog.MessageKey || a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); strings.Contains(s, "=") {
			return slog.String(a.Key, RedactMessage(s))
		}
	}
	return a
}

// RedactMessage obfuscates key=value pairs for PII keys embedded in free text,
// such as "email=bob@example.com;" in a formatted log line.
func RedactMessage(message string) string {
	return piiInMessage.ReplaceAllString(message, "${1}="+Redaction)
}

// With returns a new Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
