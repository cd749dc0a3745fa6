// Package logging provides structured logging utilities for rfcloud.
//
// # Overview
//
// This package wraps the standard library slog package with rfcloud defaults
// so that every command logs the same way: JSON on stderr, module and version
// attributes on every record, and source locations when running at debug.
// Stdout stays free for command output such as rendered manifests and status
// tables.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: probe-by-probe detail with source location
//   - INFO: lifecycle transitions (default)
//   - WARN/WARNING: recoverable problems such as transient probe errors
//   - ERROR: failures returned to the user
//
// # Usage
//
// Setting the default logger:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("rfcloud", version)
//	    slog.Info("ensuring storage claim", "user", user)
//	}
//
// Setting an explicit level from a flag:
//
//	logging.SetDefaultStructuredLoggerWithLevel("rfcloud", version, cmd.String("log-level"))
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no level is
// passed explicitly:
//
//	LOG_LEVEL=debug rfcloud start
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "resource ready",
//	    "module": "rfcloud",
//	    "version": "v1.0.0",
//	    "kind": "LoginWorkload",
//	    "id": "rfam-login-pod-alice-7c9d8-x2x4q"
//	}
package logging
