// Package observability holds the logging and Prometheus instrumentation
// shared by the procurement service.
//
// Loggers are zerolog values built once by NewLogger and narrowed with
// WithComponent and WithRequestContext:
//
//	logger := observability.NewLogger(observability.DefaultLoggingConfig())
//	repoLog := observability.WithComponent(logger, "repository")
//
// Metrics is nil-safe. Components receive a *Metrics that may be nil when
// metrics are disabled and call its Record methods unconditionally.
//
// Common log fields: component, entity, operation, request_id.
package observability
