// Package config loads the agentverse client configuration and persists
// small UI preferences between sessions.
//
// Configuration is layered: built-in defaults, then config.yaml from the
// configuration directory (~/.config/agentverse by default), then
// AGENTVERSE_* environment variables. Preferences live next to the config
// file and never mix with it.
package config
