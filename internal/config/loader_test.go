package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint(DefaultRetries), cfg.Retries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Notifications.SoundEnabled())
	assert.True(t, cfg.Notifications.MentionsEnabled())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
endpoint: https://agents.example.com
timeout: 10s
logLevel: debug
chat:
  defaultAgent: researcher
notifications:
  sound: false
upload:
  dir: /tmp/drops
  debounce: 2s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://agents.example.com", cfg.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "researcher", cfg.Chat.DefaultAgent)
	assert.False(t, cfg.Notifications.SoundEnabled())
	assert.True(t, cfg.Notifications.MentionsEnabled(), "unset option keeps its default")
	assert.Equal(t, "/tmp/drops", cfg.Upload.Dir)
	assert.Equal(t, 2*time.Second, cfg.Upload.Debounce)
	assert.Equal(t, uint(DefaultRetries), cfg.Retries, "unset option keeps its default")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "endpoint: https://from-file.example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))

	t.Setenv("AGENTVERSE_ENDPOINT", "https://from-env.example.com")
	t.Setenv("AGENTVERSE_TIMEOUT", "5s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.com", cfg.Endpoint, "environment beats file")
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("endpoint: [not: closed"), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestPrefsRoundTrip(t *testing.T) {
	store := NewPrefsStoreWithPath(t.TempDir())

	prefs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Preferences{}, prefs, "missing file yields zero prefs")

	want := Preferences{Theme: "dark", LastGroupID: "g42", LastView: "chat"}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
