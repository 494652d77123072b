package api

import "context"

// SettingsService manages backend settings overrides.
type SettingsService struct {
	client *Client
}

// Settings is the backend's settings view: effective values after merging
// overrides over defaults, plus the overrides themselves.
type Settings struct {
	Settings     map[string]any `json:"settings"`
	Overrides    map[string]any `json:"overrides"`
	HasOverrides bool           `json:"has_overrides"`
}

// Get returns the current effective settings and overrides.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := s.client.get(ctx, "/config/settings/", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update applies settings overrides.
func (s *SettingsService) Update(ctx context.Context, overrides map[string]any) error {
	body := map[string]any{"settings": overrides}
	return s.client.post(ctx, "/config/settings/", body, nil)
}

// Reset removes all settings overrides, restoring defaults.
func (s *SettingsService) Reset(ctx context.Context) error {
	return s.client.delete(ctx, "/config/settings/", nil)
}

// Validate asks the backend to validate the current settings.
func (s *SettingsService) Validate(ctx context.Context) (*ValidationResult, error) {
	var result ValidationResult
	if err := s.client.get(ctx, "/config/settings/validate/", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Backup creates a backup of the backend configuration files.
func (s *SettingsService) Backup(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := s.client.post(ctx, "/config/backup/", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Status reports the state of the backend's configuration store.
func (s *SettingsService) Status(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := s.client.get(ctx, "/config/status/", &result); err != nil {
		return nil, err
	}
	return result, nil
}
