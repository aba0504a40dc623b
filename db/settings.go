package db

import (
	"context"
)

// GetSettings returns the settings row. After migration it always exists.
func (s *Store) GetSettings(ctx context.Context) (*Settings, error) {
	tx, release := s.conn(ctx)
	defer release()

	var settings Settings
	if err := tx.Where("id = ?", SettingsID).First(&settings).Error; err != nil {
		return nil, classify("get settings", err)
	}
	return &settings, nil
}

func (s *Store) UpdateSettingsDefaultGamePath(ctx context.Context, path string) error {
	return s.updateSettings(ctx, "default_game_path", path)
}

func (s *Store) UpdateSettingsXXMIPath(ctx context.Context, path string) error {
	return s.updateSettings(ctx, "xxmi_path", path)
}

func (s *Store) UpdateSettingsFPSUnlockPath(ctx context.Context, path string) error {
	return s.updateSettings(ctx, "fps_unlock_path", path)
}

func (s *Store) UpdateSettingsJadeitePath(ctx context.Context, path string) error {
	return s.updateSettings(ctx, "jadeite_path", path)
}

func (s *Store) UpdateSettingsThirdPartyRepoUpdates(ctx context.Context, enabled bool) error {
	return s.updateSettings(ctx, "third_party_repo_updates", enabled)
}

func (s *Store) updateSettings(ctx context.Context, column string, value interface{}) error {
	return s.updateColumn(ctx, "update settings "+column, &Settings{}, SettingsID, column, value)
}

// CountSettings returns the number of settings rows; it is 1 on a healthy
// database.
func (s *Store) CountSettings(ctx context.Context) (int64, error) {
	tx, release := s.conn(ctx)
	defer release()

	var count int64
	if err := tx.Model(&Settings{}).Count(&count).Error; err != nil {
		return 0, classify("count settings", err)
	}
	return count, nil
}
