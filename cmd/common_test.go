package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"launcher-core/config"
	"launcher-core/db"
	"launcher-core/relocate"
)

func newTestApp(t *testing.T, sinks ...relocate.Sink) *app {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.Config{
		DataDir:          dataDir,
		ConfigDir:        t.TempDir(),
		ManifestsDir:     filepath.Join(dataDir, "manifests"),
		CompatibilityDir: filepath.Join(dataDir, "compatibility"),
	}
	cfg.DatabasePath = filepath.Join(cfg.ConfigDir, "storage.db")

	a, err := newApp(context.Background(), cfg, afero.NewOsFs(), zap.NewNop().Sugar(), sinks...)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewAppSeedsSettings(t *testing.T) {
	a := newTestApp(t)

	settings, err := a.store.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if want := filepath.Join(a.cfg.DataDir, "games"); settings.DefaultGamePath != want {
		t.Errorf("DefaultGamePath = %q, want %q", settings.DefaultGamePath, want)
	}
}

func TestUpdateSetting(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"default_game_path", "/mnt/games", false},
		{"xxmi_path", "/mnt/xxmi", false},
		{"fps_unlock_path", "/mnt/fps", false},
		{"jadeite_path", "/mnt/jadeite", false},
		{"third_party_repo_updates", "true", false},
		{"third_party_repo_updates", "maybe", true},
		{"theme", "dark", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := updateSetting(ctx, a.store, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("updateSetting(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}

	settings, _ := a.store.GetSettings(ctx)
	if settings.DefaultGamePath != "/mnt/games" || settings.JadeitePath != "/mnt/jadeite" || !settings.ThirdPartyRepoUpdates {
		t.Errorf("settings = %+v", settings)
	}
}

func TestParseTool(t *testing.T) {
	tests := []struct {
		name    string
		want    db.Tool
		wantErr bool
	}{
		{"runner", db.ToolRunner, false},
		{"wine", db.ToolRunner, false},
		{"dxvk", db.ToolDxvk, false},
		{"DXVK", db.ToolDxvk, false},
		{"proton", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTool(tt.name)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("parseTool(%q) = %q, %v", tt.name, got, err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("get install: %w", db.ErrNotFound), "not found"},
		{&relocate.SkipError{Reason: "source is empty"}, "nothing to copy: source is empty"},
		{fmt.Errorf("x: %w", relocate.ErrRelocationInProgress), "a move of this directory is already running"},
		{db.IOError("copy", "/a", errors.New("disk full")), "file system error, see the log for details"},
		{errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		if got := describe(tt.err); got != tt.want {
			t.Errorf("describe(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestWriteInstallTable(t *testing.T) {
	var buf bytes.Buffer
	writeInstallTable(&buf, nil)
	if !strings.Contains(buf.String(), "No installs") {
		t.Errorf("empty table = %q", buf.String())
	}

	buf.Reset()
	writeInstallTable(&buf, []db.Install{{ID: "i1", Name: "Honkai: Star Rail", Version: "2.5.0", Directory: "/games/hsr"}})
	out := buf.String()
	for _, want := range []string{"i1", "Honkai: Star Rail", "2.5.0", "/games/hsr"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestAppMoveEmitsToSinks(t *testing.T) {
	ctx := context.Background()
	events := relocate.NewChannelSink(2)
	a := newTestApp(t, events)

	if err := a.store.CreateRepository(ctx, &db.Repository{ID: "r1"}); err != nil {
		t.Fatal(err)
	}
	if err := a.store.CreateManifest(ctx, &db.Manifest{ID: "m1", RepositoryID: "r1", Filename: "m1.json"}); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(a.cfg.DataDir, "games", "hsr")
	if err := a.fs.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(a.fs, filepath.Join(src, "StarRail.exe"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := a.store.CreateInstall(ctx, &db.Install{ID: "i1", ManifestID: "m1", Directory: src}); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "hsr")
	task, err := a.relocator.Relocate(ctx, "i1", relocate.Game, dst)
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("task error = %v", err)
	}
	if e := <-events; e.Status != relocate.StatusCompleted || e.Destination != dst {
		t.Errorf("event = %+v", e)
	}
}

const hsrManifest = `{
  "display_name": "Honkai: Star Rail",
  "biz": "hkrpg_global",
  "game_versions": [
    {"metadata": {"version": "2.5.0", "versioned_name": "Honkai: Star Rail 2.5.0"},
     "assets": {"game_icon": "icon.png", "game_background": "bg.png"}}
  ]
}`

func TestSyncManifestsThenAddInstall(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	if err := afero.WriteFile(a.fs, filepath.Join(a.cfg.ManifestsDir, "games", "hkrpg_global.json"), []byte(hsrManifest), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := syncManifests(ctx, a, "local")
	if err != nil || len(added) != 1 || added[0] != "hkrpg_global" {
		t.Fatalf("syncManifests() = %v, %v", added, err)
	}

	dir := filepath.Join(t.TempDir(), "hsr")
	res, err := addInstall(ctx, a, "hkrpg_global", "2.5.0", dir, addOptions{RunnerVersion: "wine-9.0", DxvkVersion: "2.3"})
	if err != nil {
		t.Fatalf("addInstall() error = %v", err)
	}
	in, err := a.store.GetInstallByID(ctx, res.InstallID)
	if err != nil {
		t.Fatalf("GetInstallByID() error = %v", err)
	}
	if in.Name != "Honkai: Star Rail 2.5.0" || in.Directory != dir || in.GameBackground != "bg.png" {
		t.Errorf("install = %+v", in)
	}
	if want := filepath.Join(a.cfg.CompatibilityDir, "prefixes", "hkrpg_global"); in.RunnerPrefix != want {
		t.Errorf("prefix = %q, want %q", in.RunnerPrefix, want)
	}
	if ok, _ := afero.DirExists(a.fs, dir); !ok {
		t.Errorf("game directory not created")
	}

	if _, err := addInstall(ctx, a, "hkrpg_global", "9.9.9", dir, addOptions{}); err == nil {
		t.Errorf("addInstall() with unknown version succeeded")
	}
}
