// Package logging provides structured logging for the harpia control panel.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used throughout the client: socket traffic, HTTP calls against the
// panel backend, and dispatched button intents.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw socket payloads, store notifications)
//   - Info: Normal operations (connections, dispatched intents, reloads)
//   - Warn: Non-fatal issues (unknown action kinds, dropped socket, failed emits)
//   - Error: Failed requests surfaced to the user
//
// # Silent By Default
//
// The terminal UI owns stdout, so logging is silent unless a level is given
// explicitly or through the HARPIA_LOG_LEVEL environment variable. When the
// TUI runs, logs go to a file instead of stdout:
//
//	if err := logging.Initialize("debug", "/tmp/harpia.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Structured Logging
//
//	logging.Info("Intent dispatched",
//	    zap.String("event", "set_obs_scene"),
//	    zap.String("slot", "slot-3"),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
