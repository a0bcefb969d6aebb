package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig configures error reporting to Sentry.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel is the lowest level forwarded as a Sentry log entry. Errors always become issues.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// sentryLevels returns the levels stored as Sentry logs for min.
func sentryLevels(min slog.Level) []slog.Level {
	var levels []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= min {
			levels = append(levels, l)
		}
	}
	return levels
}

// NewWithSentry creates a logger that writes like New and also forwards records to Sentry.
// Without a DSN, or when the SDK cannot be initialized, it behaves exactly like New.
func NewWithSentry(cfg SentryConfig, opts ...Option) *slog.Logger {
	o := buildOptions(opts)
	local := o.baseHandler()

	if cfg.DSN == "" {
		return slog.New(newContextHandler(local, o.extractors...))
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	})
	if err != nil {
		slog.New(local).Error("sentry init failed, logging locally only", slog.String("error", err.Error()))
		return slog.New(newContextHandler(local, o.extractors...))
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background())

	return slog.New(newContextHandler(fanout{local, remote}, o.extractors...))
}
