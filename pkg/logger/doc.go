// Package logger builds log/slog loggers for otpkit services.
//
// Loggers are JSON at info level by default, text at debug level in development
// (WithEnvironment). Attributes named like credentials ("secret", "code", "backup_code", ...)
// are always replaced with [REDACTED]; more keys can be added with WithRedactedKeys.
// Request-scoped values reach the output two ways: ContextWith stores attributes in the
// context, and context extractors (WithContextValue, WithContextExtractors) read values that
// other packages put there.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "auth"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	ctx = logger.ContextWith(ctx, logger.Owner(owner))
//	log.InfoContext(ctx, "totp enrolled", logger.Label(label))
package logger
