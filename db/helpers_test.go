package db

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// openTestStore returns a migrated store backed by a file in a temp dir.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Bootstrap(context.Background(), BootstrapOptions{
		DatabasePath: filepath.Join(t.TempDir(), "storage.db"),
		Log:          zap.NewNop().Sugar(),
	})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedManifest creates a repository and one manifest under it.
func seedManifest(t *testing.T, store *Store, repoID, manifestID string) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.GetRepositoryByID(ctx, repoID); err != nil {
		if err := store.CreateRepository(ctx, &Repository{ID: repoID, GithubID: "owner/" + repoID}); err != nil {
			t.Fatalf("CreateRepository() error = %v", err)
		}
	}
	m := &Manifest{ID: manifestID, RepositoryID: repoID, DisplayName: manifestID, Filename: manifestID + ".json", Enabled: true}
	if err := store.CreateManifest(ctx, m); err != nil {
		t.Fatalf("CreateManifest() error = %v", err)
	}
}

func sampleInstall(id, manifestID string) *Install {
	return &Install{
		ID:             id,
		ManifestID:     manifestID,
		Version:        "5.0.0",
		Name:           "Genshin Impact 5.0.0",
		Directory:      "/games/genshin",
		RunnerPath:     "/compat/runners/wine-9.0",
		DxvkPath:       "/compat/dxvk/2.3",
		RunnerVersion:  "wine-9.0",
		DxvkVersion:    "2.3",
		GameIcon:       "icon.png",
		GameBackground: "bg.png",
		UseXXMI:        true,
		FPSValue:       "120",
		RunnerPrefix:   "/compat/prefixes/" + id,
	}
}
