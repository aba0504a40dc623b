package db

import (
	"context"
	"fmt"
)

// PathColumn names an install column that holds a relocatable directory.
type PathColumn string

const (
	PathDirectory PathColumn = "directory"
	PathRunner    PathColumn = "runner_path"
	PathDxvk      PathColumn = "dxvk_path"
	PathPrefix    PathColumn = "runner_prefix"
)

// Path returns the stored value of col.
func (i *Install) Path(col PathColumn) (string, error) {
	switch col {
	case PathDirectory:
		return i.Directory, nil
	case PathRunner:
		return i.RunnerPath, nil
	case PathDxvk:
		return i.DxvkPath, nil
	case PathPrefix:
		return i.RunnerPrefix, nil
	}
	return "", fmt.Errorf("unknown path column %q", col)
}

// Tool is a versioned compatibility tool of an install.
type Tool string

const (
	ToolRunner Tool = "runner"
	ToolDxvk   Tool = "dxvk"
)

func (t Tool) columns() (version string, path PathColumn, err error) {
	switch t {
	case ToolRunner:
		return "runner_version", PathRunner, nil
	case ToolDxvk:
		return "dxvk_version", PathDxvk, nil
	}
	return "", "", fmt.Errorf("unknown tool %q", t)
}

// ToolState returns the stored version and path of t.
func (i *Install) ToolState(t Tool) (version, path string, err error) {
	switch t {
	case ToolRunner:
		return i.RunnerVersion, i.RunnerPath, nil
	case ToolDxvk:
		return i.DxvkVersion, i.DxvkPath, nil
	}
	return "", "", fmt.Errorf("unknown tool %q", t)
}

func (s *Store) CreateInstall(ctx context.Context, install *Install) error {
	tx, release := s.conn(ctx)
	defer release()

	return classify("create install", tx.Create(install).Error)
}

func (s *Store) DeleteInstallByID(ctx context.Context, id string) (bool, error) {
	return s.deleteWhere(ctx, "delete install", &Install{}, "id = ?", id)
}

func (s *Store) GetInstallByID(ctx context.Context, id string) (*Install, error) {
	tx, release := s.conn(ctx)
	defer release()

	var install Install
	if err := tx.Where("id = ?", id).First(&install).Error; err != nil {
		return nil, classify("get install", err)
	}
	return &install, nil
}

// ListInstalls returns all installs in creation order.
func (s *Store) ListInstalls(ctx context.Context) ([]Install, error) {
	tx, release := s.conn(ctx)
	defer release()

	installs := []Install{}
	if err := tx.Order("rowid").Find(&installs).Error; err != nil {
		return nil, classify("list installs", err)
	}
	return installs, nil
}

// ListInstallsByManifestID returns ErrNotFound when the manifest does not
// exist and an empty slice when nothing is installed from it.
func (s *Store) ListInstallsByManifestID(ctx context.Context, manifestID string) ([]Install, error) {
	ok, err := s.exists(ctx, &Manifest{}, manifestID)
	if err != nil {
		return nil, classify("list installs", err)
	}
	if !ok {
		return nil, fmt.Errorf("list installs: manifest %s: %w", manifestID, ErrNotFound)
	}

	tx, release := s.conn(ctx)
	defer release()

	installs := []Install{}
	if err := tx.Where("manifest_id = ?", manifestID).Order("rowid").Find(&installs).Error; err != nil {
		return nil, classify("list installs", err)
	}
	return installs, nil
}

// UpdateInstallPath records a new location for one relocatable directory.
func (s *Store) UpdateInstallPath(ctx context.Context, id string, col PathColumn, path string) error {
	switch col {
	case PathDirectory, PathRunner, PathDxvk, PathPrefix:
	default:
		return fmt.Errorf("update install path: unknown column %q", col)
	}
	return s.updateColumn(ctx, "update install "+string(col), &Install{}, id, string(col), path)
}

// UpdateInstallToolVersion stores a tool's version and path in one statement.
func (s *Store) UpdateInstallToolVersion(ctx context.Context, id string, tool Tool, version, path string) error {
	versionCol, pathCol, err := tool.columns()
	if err != nil {
		return fmt.Errorf("update install tool version: %w", err)
	}

	tx, release := s.conn(ctx)
	defer release()

	res := tx.Model(&Install{}).Where("id = ?", id).Updates(map[string]interface{}{
		versionCol:      version,
		string(pathCol): path,
	})
	if res.Error != nil {
		return classify("update install "+versionCol, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update install %s: %w", versionCol, ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateInstallDirectory(ctx context.Context, id, path string) error {
	return s.UpdateInstallPath(ctx, id, PathDirectory, path)
}

func (s *Store) UpdateInstallRunnerPath(ctx context.Context, id, path string) error {
	return s.UpdateInstallPath(ctx, id, PathRunner, path)
}

func (s *Store) UpdateInstallDxvkPath(ctx context.Context, id, path string) error {
	return s.UpdateInstallPath(ctx, id, PathDxvk, path)
}

func (s *Store) UpdateInstallPrefixPath(ctx context.Context, id, path string) error {
	return s.UpdateInstallPath(ctx, id, PathPrefix, path)
}

func (s *Store) UpdateInstallRunnerVersion(ctx context.Context, id, version string) error {
	return s.updateInstall(ctx, id, "runner_version", version)
}

func (s *Store) UpdateInstallDxvkVersion(ctx context.Context, id, version string) error {
	return s.updateInstall(ctx, id, "dxvk_version", version)
}

func (s *Store) UpdateInstallIgnoreUpdates(ctx context.Context, id string, enabled bool) error {
	return s.updateInstall(ctx, id, "ignore_updates", enabled)
}

func (s *Store) UpdateInstallSkipHashCheck(ctx context.Context, id string, enabled bool) error {
	return s.updateInstall(ctx, id, "skip_hash_check", enabled)
}

func (s *Store) UpdateInstallUseJadeite(ctx context.Context, id string, enabled bool) error {
	return s.updateInstall(ctx, id, "use_jadeite", enabled)
}

func (s *Store) UpdateInstallUseXXMI(ctx context.Context, id string, enabled bool) error {
	return s.updateInstall(ctx, id, "use_xxmi", enabled)
}

func (s *Store) UpdateInstallUseFPSUnlock(ctx context.Context, id string, enabled bool) error {
	return s.updateInstall(ctx, id, "use_fps_unlock", enabled)
}

func (s *Store) UpdateInstallFPSValue(ctx context.Context, id, fps string) error {
	return s.updateInstall(ctx, id, "fps_value", fps)
}

func (s *Store) UpdateInstallEnvVars(ctx context.Context, id, envVars string) error {
	return s.updateInstall(ctx, id, "env_vars", envVars)
}

func (s *Store) UpdateInstallPreLaunchCommand(ctx context.Context, id, cmd string) error {
	return s.updateInstall(ctx, id, "pre_launch_command", cmd)
}

func (s *Store) UpdateInstallLaunchCommand(ctx context.Context, id, cmd string) error {
	return s.updateInstall(ctx, id, "launch_command", cmd)
}

func (s *Store) UpdateInstallLaunchArgs(ctx context.Context, id, args string) error {
	return s.updateInstall(ctx, id, "launch_args", args)
}

func (s *Store) updateInstall(ctx context.Context, id, column string, value interface{}) error {
	return s.updateColumn(ctx, "update install "+column, &Install{}, id, column, value)
}
