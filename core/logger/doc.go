// Package logger builds structured slog loggers and provides attribute helpers.
//
//	log := logger.New(
//		logger.WithProduction("sessions"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "session started",
//		logger.Operation("start"),
//		logger.Storage("redis"),
//	)
//
// WithDevelopment writes text at debug level; WithStaging and WithProduction write JSON.
// Context extractors run on every *Context call and append their attributes to the record.
//
// Helpers such as Error, RequestID and Key return an empty Attr for nil or empty input,
// which slog drops, so they are safe to pass unconditionally. Cookie logs a cookie name;
// session tokens and ids are never logged.
package logger
