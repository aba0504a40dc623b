package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"launcher-core/logger"
)

var ErrNotFound = errors.New("manifest not found")

// errFound stops a walk once the wanted file is found.
var errFound = errors.New("found")

// Fetcher returns manifest content by file name, e.g. "hk4e_global.json".
type Fetcher interface {
	Get(filename string) (*GameManifest, error)
}

// DirFetcher reads manifests from a local checkout of manifest repositories.
// Files may sit at any depth below Root.
type DirFetcher struct {
	Root string
	Fs   afero.Fs
	Log  *zap.SugaredLogger
}

func NewDirFetcher(root string, log *zap.SugaredLogger) *DirFetcher {
	return &DirFetcher{Root: root, Fs: afero.NewOsFs(), Log: logger.OrNop(log)}
}

// Get finds the first file named filename below Root, in lexical walk order,
// and decodes it.
func (f *DirFetcher) Get(filename string) (*GameManifest, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid manifest file name %q", filename)
	}

	var found string
	err := afero.Walk(f.Fs, f.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == filename {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, fmt.Errorf("search manifest %s: %w", filename, err)
	}
	if found == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return f.read(found)
}

// List decodes every manifest below Root keyed by file name. Files that fail
// to decode are logged and left out.
func (f *DirFetcher) List() (map[string]*GameManifest, error) {
	manifests := make(map[string]*GameManifest)
	err := afero.Walk(f.Fs, f.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}
		if _, dup := manifests[info.Name()]; dup {
			return nil
		}
		m, err := f.read(path)
		if err != nil {
			logger.OrNop(f.Log).Warnw("Skipping unreadable manifest", zap.String("path", path), zap.Error(err))
			return nil
		}
		manifests[info.Name()] = m
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	return manifests, nil
}

func (f *DirFetcher) read(path string) (*GameManifest, error) {
	file, err := f.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var m GameManifest
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return &m, nil
}
