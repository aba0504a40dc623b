package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestSeedDirectories(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	fs := afero.NewMemMapFs()
	dataDir := "/data"

	if err := SeedDirectories(ctx, store, fs, dataDir); err != nil {
		t.Fatalf("SeedDirectories() error = %v", err)
	}

	for _, dir := range []string{
		"games", "extras/xxmi", "extras/fps_unlock", "extras/jadeite",
		"compatibility/runners", "compatibility/dxvk", "compatibility/prefixes", "manifests",
	} {
		path := filepath.Join(dataDir, filepath.FromSlash(dir))
		if ok, _ := afero.DirExists(fs, path); !ok {
			t.Errorf("directory %s was not created", path)
		}
	}

	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	want := map[string]string{
		"default_game_path": filepath.Join(dataDir, "games"),
		"xxmi_path":         filepath.Join(dataDir, "extras", "xxmi"),
		"fps_unlock_path":   filepath.Join(dataDir, "extras", "fps_unlock"),
		"jadeite_path":      filepath.Join(dataDir, "extras", "jadeite"),
	}
	got := map[string]string{
		"default_game_path": settings.DefaultGamePath,
		"xxmi_path":         settings.XXMIPath,
		"fps_unlock_path":   settings.FPSUnlockPath,
		"jadeite_path":      settings.JadeitePath,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSeedDirectoriesKeepsExistingSettings(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	fs := afero.NewMemMapFs()

	if err := SeedDirectories(ctx, store, fs, "/data"); err != nil {
		t.Fatalf("SeedDirectories() error = %v", err)
	}
	if err := store.UpdateSettingsDefaultGamePath(ctx, "/mnt/games"); err != nil {
		t.Fatal(err)
	}
	if err := SeedDirectories(ctx, store, fs, "/data"); err != nil {
		t.Fatalf("second SeedDirectories() error = %v", err)
	}

	settings, _ := store.GetSettings(ctx)
	if settings.DefaultGamePath != "/mnt/games" {
		t.Errorf("DefaultGamePath = %q, want the user's value kept", settings.DefaultGamePath)
	}
}

// A default directory removed by the user is recreated on the next start and
// its setting is reset to it, even if the user had pointed it elsewhere.
func TestSeedDirectoriesRecreatesDeletedDirectory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	fs := afero.NewMemMapFs()

	if err := SeedDirectories(ctx, store, fs, "/data"); err != nil {
		t.Fatalf("SeedDirectories() error = %v", err)
	}
	if err := store.UpdateSettingsXXMIPath(ctx, "/opt/xxmi"); err != nil {
		t.Fatal(err)
	}
	if err := fs.RemoveAll(filepath.Join("/data", "extras", "xxmi")); err != nil {
		t.Fatal(err)
	}

	if err := SeedDirectories(ctx, store, fs, "/data"); err != nil {
		t.Fatalf("second SeedDirectories() error = %v", err)
	}
	settings, _ := store.GetSettings(ctx)
	if want := filepath.Join("/data", "extras", "xxmi"); settings.XXMIPath != want {
		t.Errorf("XXMIPath = %q, want %q", settings.XXMIPath, want)
	}
}

type failMkdirFs struct {
	afero.Fs
}

func (failMkdirFs) MkdirAll(string, os.FileMode) error { return os.ErrPermission }

func TestSeedDirectoriesIOFailure(t *testing.T) {
	store := openTestStore(t)
	err := SeedDirectories(context.Background(), store, failMkdirFs{afero.NewMemMapFs()}, "/data")
	if !errors.Is(err, ErrIOFailure) {
		t.Errorf("SeedDirectories() error = %v, want ErrIOFailure", err)
	}
}
