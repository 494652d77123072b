package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"agentverse/pkg/logging"
)

const prefsFileName = "prefs.yaml"

// Preferences is the small set of UI choices persisted between sessions.
type Preferences struct {
	Theme       string `yaml:"theme,omitempty"`
	LastGroupID string `yaml:"lastGroupId,omitempty"`
	LastView    string `yaml:"lastView,omitempty"`
}

// PrefsStore persists Preferences as YAML under the configuration
// directory. Zero value is not usable; construct with NewPrefsStore.
type PrefsStore struct {
	mu         sync.RWMutex
	configPath string
}

// NewPrefsStore creates a store rooted at the default configuration
// directory.
func NewPrefsStore() *PrefsStore {
	return &PrefsStore{}
}

// NewPrefsStoreWithPath creates a store rooted at a custom directory
// (used by tests).
func NewPrefsStoreWithPath(configPath string) *PrefsStore {
	return &PrefsStore{configPath: configPath}
}

// Load reads the persisted preferences. A missing file yields zero-value
// preferences, not an error.
func (ps *PrefsStore) Load() (Preferences, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	path, err := ps.prefsPath()
	if err != nil {
		return Preferences{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return prefs, nil
}

// Save writes the preferences, creating the configuration directory if
// needed.
func (ps *PrefsStore) Save(prefs Preferences) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	path, err := ps.prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Debug("Prefs", "saved preferences to %s", path)
	return nil
}

func (ps *PrefsStore) prefsPath() (string, error) {
	if ps.configPath != "" {
		return filepath.Join(ps.configPath, prefsFileName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, prefsFileName), nil
}
