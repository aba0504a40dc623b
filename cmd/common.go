package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"launcher-core/config"
	"launcher-core/db"
	"launcher-core/install"
	"launcher-core/logger"
	"launcher-core/manifest"
	"launcher-core/relocate"
	"launcher-core/versions"
)

// app holds the components commands work with. It is built once per process.
type app struct {
	cfg       config.Config
	fs        afero.Fs
	store     *db.Store
	manifests *manifest.DirFetcher
	installs  *install.Service
	relocator *relocate.Relocator
	switcher  *versions.Switcher
	log       *zap.SugaredLogger
}

// newApp opens and migrates the database and wires every component to it.
func newApp(ctx context.Context, cfg config.Config, fs afero.Fs, log *zap.SugaredLogger, sinks ...relocate.Sink) (*app, error) {
	log = logger.OrNop(log)
	if fs == nil {
		fs = afero.NewOsFs()
	}

	store, err := db.Bootstrap(ctx, db.BootstrapOptions{
		DatabasePath: cfg.DatabasePath,
		DataDir:      cfg.DataDir,
		Fs:           fs,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}

	fetcher := manifest.NewDirFetcher(cfg.ManifestsDir, log)
	fetcher.Fs = fs

	sink := relocate.MultiSink(append([]relocate.Sink{relocate.LogSink{Log: log}}, sinks...))
	return &app{
		cfg:       cfg,
		fs:        fs,
		store:     store,
		manifests: fetcher,
		installs: install.NewService(install.Options{
			Store:            store,
			Fetcher:          fetcher,
			Fs:               fs,
			CompatibilityDir: cfg.CompatibilityDir,
			Log:              log,
		}),
		relocator: relocate.New(store, relocate.WithFs(fs), relocate.WithSink(sink), relocate.WithLogger(log)),
		switcher:  versions.New(store, fs, log),
		log:       log,
	}, nil
}

// bootstrap handles shared initialization logic for commands. Startup
// failures end the process.
func bootstrap(sinks ...relocate.Sink) *app {
	a, err := newApp(context.Background(), loadedConfig, nil, logger.Log, sinks...)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize database", zap.String("path", loadedConfig.DatabasePath), zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", loadedConfig.DatabasePath))
	return a
}

// Close waits for running relocations and closes the store.
func (a *app) Close() {
	a.relocator.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warnw("Failed to close database", zap.Error(err))
	}
}

// describe turns an error into the message shown to the user. Details go to
// the log.
func describe(err error) string {
	var skip *relocate.SkipError
	switch {
	case errors.As(err, &skip):
		return "nothing to copy: " + skip.Reason
	case errors.Is(err, db.ErrNotFound):
		return "not found"
	case errors.Is(err, db.ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, db.ErrConstraintViolation):
		return "still referenced or refers to something missing"
	case errors.Is(err, relocate.ErrRelocationInProgress):
		return "a move of this directory is already running"
	case errors.Is(err, relocate.ErrUnknownKind):
		return "unknown kind, use one of Game, Runner, DXVK, Prefix"
	case errors.Is(err, db.ErrIOFailure):
		return "file system error, see the log for details"
	default:
		return err.Error()
	}
}

// settingUpdaters maps settings keys accepted on the command line to store
// updates.
var settingUpdaters = map[string]func(ctx context.Context, s *db.Store, value string) error{
	"default_game_path": func(ctx context.Context, s *db.Store, v string) error { return s.UpdateSettingsDefaultGamePath(ctx, v) },
	"xxmi_path":         func(ctx context.Context, s *db.Store, v string) error { return s.UpdateSettingsXXMIPath(ctx, v) },
	"fps_unlock_path":   func(ctx context.Context, s *db.Store, v string) error { return s.UpdateSettingsFPSUnlockPath(ctx, v) },
	"jadeite_path":      func(ctx context.Context, s *db.Store, v string) error { return s.UpdateSettingsJadeitePath(ctx, v) },
	"third_party_repo_updates": func(ctx context.Context, s *db.Store, v string) error {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("third_party_repo_updates must be true or false: %w", err)
		}
		return s.UpdateSettingsThirdPartyRepoUpdates(ctx, enabled)
	},
}

func updateSetting(ctx context.Context, s *db.Store, key, value string) error {
	update, ok := settingUpdaters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	return update(ctx, s, value)
}

// parseTool maps a command line tool name to a store tool.
func parseTool(name string) (db.Tool, error) {
	switch name {
	case "runner", "Runner", "wine":
		return db.ToolRunner, nil
	case "dxvk", "DXVK":
		return db.ToolDxvk, nil
	}
	return "", fmt.Errorf("unknown tool %q, use runner or dxvk", name)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
