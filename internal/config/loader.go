package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"agentverse/pkg/logging"
)

const (
	userConfigDir  = ".config/agentverse"
	configFileName = "config.yaml"

	// envPrefix scopes environment overrides: AGENTVERSE_ENDPOINT,
	// AGENTVERSE_CHAT_DEFAULT_AGENT, and so on.
	envPrefix = "agentverse"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory. Precedence,
// lowest to highest: built-in defaults, config.yaml, AGENTVERSE_* environment
// variables. A missing config.yaml is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "no config.yaml at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("failed to read %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", configFilePath, err)
		}
		logging.Debug("ConfigLoader", "loaded configuration from %s", configFilePath)
	}

	if err := envconfig.Process(envPrefix, &config); err != nil {
		return Config{}, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return config, nil
}
