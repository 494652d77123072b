package config

import "time"

// Config is the top-level configuration structure for agentverse.
type Config struct {
	// Endpoint is the base URL of the backend, without the /api/v1 prefix.
	Endpoint string        `yaml:"endpoint,omitempty" envconfig:"ENDPOINT"`
	Timeout  time.Duration `yaml:"timeout,omitempty" envconfig:"TIMEOUT"`
	// Retries is the maximum number of attempts per request. 1 disables
	// retrying; 4xx responses are never retried regardless.
	Retries  uint   `yaml:"retries,omitempty" envconfig:"RETRIES"`
	LogLevel string `yaml:"logLevel,omitempty" envconfig:"LOG_LEVEL"`

	Chat          ChatConfig          `yaml:"chat,omitempty"`
	Notifications NotificationsConfig `yaml:"notifications,omitempty"`
	Upload        UploadConfig        `yaml:"upload,omitempty"`
}

// ChatConfig configures the interactive chat session.
type ChatConfig struct {
	// DefaultAgent receives messages typed without an explicit @mention.
	// Empty means the first agent in the group roster.
	DefaultAgent string `yaml:"defaultAgent,omitempty" envconfig:"DEFAULT_AGENT"`
	// HistoryFile is the readline history location. Empty uses
	// <config dir>/chat_history.
	HistoryFile string `yaml:"historyFile,omitempty" envconfig:"HISTORY_FILE"`
}

// NotificationsConfig controls mention alerts during a chat session.
type NotificationsConfig struct {
	Sound    *bool `yaml:"sound,omitempty" envconfig:"SOUND"`
	Mentions *bool `yaml:"mentions,omitempty" envconfig:"MENTIONS"`
}

// SoundEnabled reports whether mention alerts ring the terminal bell.
func (n NotificationsConfig) SoundEnabled() bool {
	return n.Sound == nil || *n.Sound
}

// MentionsEnabled reports whether mention alerts are shown at all.
func (n NotificationsConfig) MentionsEnabled() bool {
	return n.Mentions == nil || *n.Mentions
}

// UploadConfig configures the drop-folder upload watcher.
type UploadConfig struct {
	// Dir is the watched directory. Empty disables the watcher.
	Dir string `yaml:"dir,omitempty" envconfig:"DIR"`
	// Agent is the target agent for watched uploads. Empty falls back to
	// the chat default agent.
	Agent        string        `yaml:"agent,omitempty" envconfig:"AGENT"`
	Debounce     time.Duration `yaml:"debounce,omitempty" envconfig:"DEBOUNCE"`
	PollInterval time.Duration `yaml:"pollInterval,omitempty" envconfig:"POLL_INTERVAL"`
}
