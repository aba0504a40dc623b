package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// seedDir is a default directory under the data dir and the settings field
// that points at it.
type seedDir struct {
	rel    string
	update func(s *Store, ctx context.Context, path string) error
}

var settingsDirs = []seedDir{
	{rel: "games", update: (*Store).UpdateSettingsDefaultGamePath},
	{rel: filepath.Join("extras", "xxmi"), update: (*Store).UpdateSettingsXXMIPath},
	{rel: filepath.Join("extras", "fps_unlock"), update: (*Store).UpdateSettingsFPSUnlockPath},
	{rel: filepath.Join("extras", "jadeite"), update: (*Store).UpdateSettingsJadeitePath},
}

var plainDirs = []string{
	filepath.Join("compatibility", "runners"),
	filepath.Join("compatibility", "dxvk"),
	filepath.Join("compatibility", "prefixes"),
	"manifests",
}

// SeedDirectories creates the default directories under dataDir. When a
// settings-backed directory is missing it is created and its absolute path
// is written into settings, overwriting whatever was stored. Directories that
// already exist leave settings alone.
func SeedDirectories(ctx context.Context, store *Store, fs afero.Fs, dataDir string) error {
	root, err := filepath.Abs(dataDir)
	if err != nil {
		return IOError("resolve data dir", dataDir, err)
	}

	for _, d := range settingsDirs {
		path := filepath.Join(root, d.rel)
		created, err := ensureDir(fs, path)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		if err := d.update(store, ctx, path); err != nil {
			return fmt.Errorf("seed %s: %w", d.rel, err)
		}
		store.log.Infow("Created default directory", zap.String("path", path))
	}

	for _, rel := range plainDirs {
		if _, err := ensureDir(fs, filepath.Join(root, rel)); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(fs afero.Fs, path string) (bool, error) {
	exists, err := afero.DirExists(fs, path)
	if err != nil {
		return false, IOError("stat", path, err)
	}
	if exists {
		return false, nil
	}
	if err := fs.MkdirAll(path, 0755); err != nil {
		return false, IOError("create directory", path, err)
	}
	return true, nil
}
