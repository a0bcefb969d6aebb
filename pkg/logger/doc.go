// Package logger builds slog loggers for fbgraph services.
//
// New returns a JSON logger on stdout at Info level. NewWithSentry additionally
// forwards warnings and errors to Sentry when a DSN is configured, and NewNope
// discards everything (the default for library types that take a *slog.Logger).
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(logger.RequestIDExtractor(), logger.AppIDExtractor()),
//	)
//	ctx = logger.WithRequestID(ctx, id)
//	log.InfoContext(ctx, "login started") // carries request_id
//
// Wrap credentials in Secret before logging them:
//
//	log.Info("app configured", slog.Any("secret", logger.Secret(appSecret)))
package logger
