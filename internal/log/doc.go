// Package log builds the slog loggers used by guidecrawl.
//
// Every logger returned by this package routes records through a
// RedactingHandler, which masks values that should never reach a log file:
//   - request headers such as Authorization, Cookie and Proxy-Authorization
//   - keys that look like credentials (password, token, secret)
//   - values shaped like bearer or basic credentials
//   - passwords embedded in URL userinfo ("http://user:pw@proxy")
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Warn("page unreachable", "url", pageURL, "error", err)
package log
