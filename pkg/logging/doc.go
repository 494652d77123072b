// Package logging provides a structured logging system for agentverse with
// unified log handling and level filtering.
//
// This package is built on Go's standard slog package and adds a subsystem
// identifier to every entry so log output can be filtered by component.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage
//
//	import "agentverse/pkg/logging"
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("API", "Request completed in %s", elapsed)
//	logging.Debug("Stream", "Frame received for group %s", groupID)
//	logging.Warn("Store", "Dropping message without role")
//	logging.Error("API", err, "Request failed")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **API**: HTTP client request/response handling
//   - **Stream**: SSE connection lifecycle and event translation
//   - **Store**: Group state store actions
//   - **Config**: Configuration loading and validation
//   - **Watcher**: Upload folder monitoring
//   - **Chat**: Interactive chat session
//
// # Thread Safety
//
// All logging functions are safe for concurrent use; slog handlers serialize
// output internally.
package logging
