package config

import "time"

const (
	// DefaultEndpoint is the backend base URL used when nothing else is
	// configured.
	DefaultEndpoint = "http://localhost:8000"

	// DefaultRetries is the per-request attempt cap.
	DefaultRetries = 3
)

// GetDefaultConfig returns the built-in defaults. Loaded files and
// environment overrides are applied on top of this.
func GetDefaultConfig() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Timeout:  30 * time.Second,
		Retries:  DefaultRetries,
		LogLevel: "info",
		Upload: UploadConfig{
			Debounce:     500 * time.Millisecond,
			PollInterval: 10 * time.Second,
		},
	}
}
