package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launcher-core/logger"
)

// Open opens the SQLite database at dbPath, creating the file and its parent
// directory on first run. Foreign keys are enforced on every connection.
func Open(dbPath string, log *zap.SugaredLogger) (*gorm.DB, bool, error) {
	log = logger.OrNop(log)

	created := false
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, false, IOError("create database directory", filepath.Dir(dbPath), err)
		}
		log.Infow("Database does not exist, creating a new one", zap.String("path", dbPath))
		created = true
	} else if err != nil {
		return nil, false, IOError("stat database", dbPath, err)
	}

	newLogger := gormlogger.New(
		logger.GormWriter{Log: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", filepath.ToSlash(dbPath))
	gdb, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to connect database: %w", err)
	}
	return gdb, created, nil
}

// BootstrapOptions configures Bootstrap.
type BootstrapOptions struct {
	DatabasePath string
	DataDir      string
	Migrations   []Migration // defaults to Migrations
	Fs           afero.Fs    // defaults to the OS filesystem
	Log          *zap.SugaredLogger
}

// Bootstrap opens the database, brings the schema up to date, seeds the
// default directories and returns the store every other component shares.
// Any error is meant to abort startup.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (*Store, error) {
	log := logger.OrNop(opts.Log)
	if opts.Migrations == nil {
		opts.Migrations = Migrations
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	gdb, created, err := Open(opts.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	applied, err := EnsureSchema(ctx, gdb, opts.Migrations, log)
	if err != nil {
		closeGorm(gdb)
		return nil, err
	}
	log.Infow("Database schema ready",
		zap.String("path", opts.DatabasePath),
		zap.Bool("created", created),
		zap.Int64s("applied", applied),
	)

	store := NewStore(gdb, log)
	if opts.DataDir != "" {
		if err := SeedDirectories(ctx, store, opts.Fs, opts.DataDir); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
