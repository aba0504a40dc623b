// Package install adds, removes and launches installs on top of the record
// store and the manifest content.
package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"launcher-core/db"
	"launcher-core/logger"
	"launcher-core/manifest"
)

var (
	ErrInvalidRequest   = errors.New("invalid install request")
	ErrManifestDisabled = errors.New("manifest disabled")
	ErrVersionNotFound  = errors.New("game version not found in manifest")
)

// Launcher starts a game. It is implemented outside this module.
type Launcher interface {
	Launch(ctx context.Context, install *db.Install, gm *manifest.GameManifest, settings *db.Settings) error
}

// AddRequest carries everything the user chose for a new install.
type AddRequest struct {
	ManifestID       string
	Version          string
	Name             string
	Directory        string
	RunnerPath       string
	DxvkPath         string
	RunnerVersion    string
	DxvkVersion      string
	GameIcon         string
	GameBackground   string
	IgnoreUpdates    bool
	SkipHashCheck    bool
	UseJadeite       bool
	UseXXMI          bool
	UseFPSUnlock     bool
	EnvVars          string
	PreLaunchCommand string
	LaunchCommand    string
	FPSValue         string
	RunnerPrefix     string
	LaunchArgs       string
}

func (r AddRequest) validate() error {
	required := []struct{ name, value string }{
		{"manifest_id", r.ManifestID},
		{"version", r.Version},
		{"name", r.Name},
		{"directory", r.Directory},
		{"runner_path", r.RunnerPath},
		{"dxvk_path", r.DxvkPath},
		{"game_icon", r.GameIcon},
		{"game_background", r.GameBackground},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

type AddResult struct {
	InstallID  string
	Background string
}

// Service ties the store, manifest content and filesystem together.
type Service struct {
	store            *db.Store
	fetcher          manifest.Fetcher
	launcher         Launcher
	fs               afero.Fs
	compatibilityDir string
	goos             string
	log              *zap.SugaredLogger
}

type Options struct {
	Store            *db.Store
	Fetcher          manifest.Fetcher
	Launcher         Launcher // optional
	Fs               afero.Fs // defaults to the OS filesystem
	CompatibilityDir string
	Log              *zap.SugaredLogger
}

func NewService(opts Options) *Service {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Service{
		store:            opts.Store,
		fetcher:          opts.Fetcher,
		launcher:         opts.Launcher,
		fs:               opts.Fs,
		compatibilityDir: opts.CompatibilityDir,
		goos:             runtime.GOOS,
		log:              logger.OrNop(opts.Log),
	}
}

// Add registers a new install of a game version and prepares its
// directories. Runner and DXVK paths are only used on Linux, where they are
// placed under the compatibility directory by version.
func (s *Service) Add(ctx context.Context, req AddRequest) (*AddResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	filename := req.ManifestID + ".json"
	record, err := s.store.GetManifestByFilename(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("add install: %w", err)
	}
	gm, err := s.fetcher.Get(filename)
	if err != nil {
		return nil, fmt.Errorf("add install: %w", err)
	}
	gv, ok := gm.FindVersion(req.Version)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrVersionNotFound, filename, req.Version)
	}

	directory := filepath.Clean(req.Directory)
	if err := s.fs.MkdirAll(directory, 0755); err != nil {
		return nil, db.IOError("create install directory", directory, err)
	}

	runnerPath, dxvkPath := "", ""
	if s.goos == "linux" {
		runnerPath = filepath.Join(s.compatibilityDir, "runners", req.RunnerVersion)
		dxvkPath = filepath.Join(s.compatibilityDir, "dxvk", req.DxvkVersion)
		for _, dir := range []string{runnerPath, dxvkPath, req.RunnerPrefix} {
			if dir == "" {
				continue
			}
			if err := s.fs.MkdirAll(dir, 0755); err != nil {
				return nil, db.IOError("create compatibility directory", dir, err)
			}
		}
	}

	in := &db.Install{
		ID:               uuid.NewString(),
		ManifestID:       record.ID,
		Version:          req.Version,
		Name:             gv.Metadata.VersionedName,
		Directory:        directory,
		RunnerPath:       runnerPath,
		DxvkPath:         dxvkPath,
		RunnerVersion:    req.RunnerVersion,
		DxvkVersion:      req.DxvkVersion,
		GameIcon:         gv.Assets.GameIcon,
		GameBackground:   gv.Assets.GameBackground,
		IgnoreUpdates:    req.IgnoreUpdates,
		SkipHashCheck:    req.SkipHashCheck,
		UseJadeite:       req.UseJadeite,
		UseXXMI:          req.UseXXMI,
		UseFPSUnlock:     req.UseFPSUnlock,
		EnvVars:          req.EnvVars,
		PreLaunchCommand: req.PreLaunchCommand,
		LaunchCommand:    req.LaunchCommand,
		FPSValue:         req.FPSValue,
		RunnerPrefix:     req.RunnerPrefix,
		LaunchArgs:       req.LaunchArgs,
	}
	if err := s.store.CreateInstall(ctx, in); err != nil {
		return nil, fmt.Errorf("add install: %w", err)
	}

	s.log.Infow("Install added",
		zap.String("install_id", in.ID),
		zap.String("manifest_id", in.ManifestID),
		zap.String("version", in.Version),
		zap.String("directory", in.Directory),
	)
	return &AddResult{InstallID: in.ID, Background: in.GameBackground}, nil
}

// Remove deletes the install's game directory, its prefix when wipePrefix is
// set, and then the record. The record is kept if a directory could not be
// removed.
func (s *Service) Remove(ctx context.Context, id string, wipePrefix bool) error {
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRequest)
	}
	in, err := s.store.GetInstallByID(ctx, id)
	if err != nil {
		return fmt.Errorf("remove install: %w", err)
	}

	var errs error
	if wipePrefix && in.RunnerPrefix != "" {
		if err := s.fs.RemoveAll(in.RunnerPrefix); err != nil {
			errs = multierr.Append(errs, db.IOError("remove prefix", in.RunnerPrefix, err))
		}
	}
	if in.Directory != "" {
		if err := s.fs.RemoveAll(in.Directory); err != nil {
			errs = multierr.Append(errs, db.IOError("remove game directory", in.Directory, err))
		}
	}
	if errs != nil {
		return errs
	}

	if _, err := s.store.DeleteInstallByID(ctx, id); err != nil {
		return fmt.Errorf("remove install: %w", err)
	}
	s.log.Infow("Install removed", zap.String("install_id", id), zap.Bool("wipe_prefix", wipePrefix))
	return nil
}

// Launch hands the install, its manifest content and the global settings to
// the launcher.
func (s *Service) Launch(ctx context.Context, id string) error {
	if s.launcher == nil {
		return errors.New("no launcher configured")
	}
	in, err := s.store.GetInstallByID(ctx, id)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	record, err := s.store.GetManifestByID(ctx, in.ManifestID)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	gm, err := s.fetcher.Get(record.Filename)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	s.log.Infow("Launching install", zap.String("install_id", id), zap.String("name", in.Name))
	return s.launcher.Launch(ctx, in, gm, settings)
}

// GameManifest returns manifest content for filename, but only while its
// manifest record exists and is enabled.
func (s *Service) GameManifest(ctx context.Context, filename string) (*manifest.GameManifest, error) {
	record, err := s.store.GetManifestByFilename(ctx, filename)
	if err != nil {
		return nil, err
	}
	if !record.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrManifestDisabled, filename)
	}
	return s.fetcher.Get(filename)
}

func (s *Service) SetManifestEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.store.UpdateManifestEnabledByID(ctx, id, enabled); err != nil {
		return err
	}
	s.log.Infow("Manifest toggled", zap.String("manifest_id", id), zap.Bool("enabled", enabled))
	return nil
}

// NewRequest starts an AddRequest for a game version of an enabled manifest,
// with the name and artwork taken from the manifest content. The caller
// fills in the directory and compatibility choices.
func (s *Service) NewRequest(ctx context.Context, manifestID, version string) (AddRequest, error) {
	gm, err := s.GameManifest(ctx, manifestID+".json")
	if err != nil {
		return AddRequest{}, err
	}
	gv, ok := gm.FindVersion(version)
	if !ok {
		return AddRequest{}, fmt.Errorf("%w: %s %s", ErrVersionNotFound, manifestID, version)
	}
	return AddRequest{
		ManifestID:     manifestID,
		Version:        version,
		Name:           gv.Metadata.VersionedName,
		RunnerPath:     filepath.Join(s.compatibilityDir, "runners"),
		DxvkPath:       filepath.Join(s.compatibilityDir, "dxvk"),
		GameIcon:       gv.Assets.GameIcon,
		GameBackground: gv.Assets.GameBackground,
	}, nil
}

// RegisterManifests records a manifest row under repositoryID for every
// manifest file not known yet, creating the repository when needed. New
// manifests start enabled. It returns the ids it added.
func (s *Service) RegisterManifests(ctx context.Context, repositoryID string, manifests map[string]*manifest.GameManifest) ([]string, error) {
	if repositoryID == "" {
		return nil, fmt.Errorf("%w: missing repository id", ErrInvalidRequest)
	}
	if _, err := s.store.GetRepositoryByID(ctx, repositoryID); errors.Is(err, db.ErrNotFound) {
		if err := s.store.CreateRepository(ctx, &db.Repository{ID: repositoryID}); err != nil {
			return nil, fmt.Errorf("register manifests: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("register manifests: %w", err)
	}

	filenames := make([]string, 0, len(manifests))
	for filename := range manifests {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	added := []string{}
	for _, filename := range filenames {
		if _, err := s.store.GetManifestByFilename(ctx, filename); err == nil {
			continue
		} else if !errors.Is(err, db.ErrNotFound) {
			return added, fmt.Errorf("register manifests: %w", err)
		}
		record := &db.Manifest{
			ID:           strings.TrimSuffix(filename, ".json"),
			RepositoryID: repositoryID,
			DisplayName:  manifests[filename].DisplayName,
			Filename:     filename,
			Enabled:      true,
		}
		if err := s.store.CreateManifest(ctx, record); err != nil {
			return added, fmt.Errorf("register manifest %s: %w", filename, err)
		}
		added = append(added, record.ID)
	}

	s.log.Infow("Manifests registered", zap.String("repository_id", repositoryID), zap.Strings("added", added))
	return added, nil
}
