// Package logging provides structured logging for the air control core.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same handler, level filter and default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Levels
//
// Expected actuator rejections (already in state, room closed) are logged at
// info. Unreachable actuators and unavailable collaborators are logged at warn.
// Malformed telemetry is logged at warn and dropped.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("ingest").Info("worker started", "worker", 3)
package logging
