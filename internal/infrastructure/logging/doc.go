// Package logging provides structured logging for tellhub.
//
// It wraps log/slog so every component logs with the same handler,
// level filter and default fields (service, version).
//
// Configuration lives in the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	registry.SetLogger(logger.Component("device"))
//
// *Logger satisfies the small Logger interfaces declared by the domain
// packages (Debug, Info, Warn, Error), so it can be handed to them directly.
package logging
