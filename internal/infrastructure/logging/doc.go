// Package logging provides structured logging for the Eufy bridge.
//
// It wraps log/slog with JSON or text output, level filtering and default
// service/version fields on every entry. Components receive a child logger
// tagged with their name via Component.
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log cloud passwords, session tokens or JWT secrets.
package logging
