// Package chat implements the interactive terminal session for a group:
// a readline loop with slash commands, ANSI transcript rendering, mention
// notifications, and the reconnection policy for the group event stream.
package chat
