// Package versions records a new runner or DXVK version for an install and
// points the install at the matching directory. Nothing is downloaded.
package versions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"launcher-core/db"
	"launcher-core/logger"
)

// Store is the part of the record store the switcher needs.
type Store interface {
	GetInstallByID(ctx context.Context, id string) (*db.Install, error)
	UpdateInstallToolVersion(ctx context.Context, id string, tool db.Tool, version, path string) error
}

// Result describes a completed switch.
type Result struct {
	OldVersion  string
	NewVersion  string
	OldPath     string
	NewPath     string
	PathChanged bool
}

type Switcher struct {
	store Store
	fs    afero.Fs
	log   *zap.SugaredLogger
}

// New returns a switcher. A nil fs means the OS filesystem.
func New(store Store, fs afero.Fs, log *zap.SugaredLogger) *Switcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Switcher{store: store, fs: fs, log: logger.OrNop(log)}
}

// Switch sets the tool's version to newVersion, derives the new tool path
// from the current one, creates it if missing and stores both in one update.
func (s *Switcher) Switch(ctx context.Context, installID string, tool db.Tool, newVersion string) (*Result, error) {
	if newVersion == "" {
		return nil, fmt.Errorf("switch %s version: empty version", tool)
	}

	install, err := s.store.GetInstallByID(ctx, installID)
	if err != nil {
		return nil, fmt.Errorf("switch %s version: %w", tool, err)
	}
	oldVersion, oldPath, err := install.ToolState(tool)
	if err != nil {
		return nil, err
	}

	newPath := DerivePath(oldPath, oldVersion, newVersion)
	res := &Result{
		OldVersion:  oldVersion,
		NewVersion:  newVersion,
		OldPath:     oldPath,
		NewPath:     newPath,
		PathChanged: newPath != oldPath,
	}

	log := s.log.With(
		zap.String("install_id", installID),
		zap.String("tool", string(tool)),
		zap.String("old_version", oldVersion),
		zap.String("new_version", newVersion),
	)
	if !res.PathChanged {
		log.Warnw("Version not found in tool path, keeping path", zap.String("path", oldPath))
	}

	if newPath != "" {
		if err := s.fs.MkdirAll(newPath, 0755); err != nil {
			return nil, db.IOError("create tool directory", newPath, err)
		}
	}

	if err := s.store.UpdateInstallToolVersion(ctx, installID, tool, newVersion, newPath); err != nil {
		return nil, err
	}
	log.Infow("Switched tool version", zap.String("path", newPath))
	return res, nil
}

// DerivePath computes the tool path for newVersion. When the last element of
// path is the old version it is replaced by the new one. Otherwise every
// occurrence of the old version in path is replaced, which keeps layouts such
// as "/runners/wine-7.0-amd64" working. An empty old version, or one that does
// not occur in path, leaves path unchanged.
func DerivePath(path, oldVersion, newVersion string) string {
	if path == "" || oldVersion == "" {
		return path
	}
	if filepath.Base(path) == oldVersion {
		return filepath.Join(filepath.Dir(path), newVersion)
	}
	return strings.ReplaceAll(path, oldVersion, newVersion)
}
