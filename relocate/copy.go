package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"launcher-core/db"
)

// copyTree copies the contents of src into dst, which must already exist.
// Files, directories and symlinks keep their relative layout and permission
// bits. Symlinks below src are recreated, never followed. ctx is checked
// before each entry.
//
// The returned paths are the entries created directly inside dst, also when
// the copy failed part way.
func copyTree(ctx context.Context, fs afero.Fs, src, dst string) (created []string, err error) {
	type dirMode struct {
		path string
		perm os.FileMode
	}
	var dirs []dirMode

	err = afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return db.IOError("walk", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		top := filepath.Dir(rel) == "."
		if top {
			// Only entries that were not there before belong to this copy.
			if found, err := present(fs, target); err != nil || found {
				if err == nil {
					err = os.ErrExist
				}
				return db.IOError("create", target, err)
			}
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			err = copySymlink(fs, path, target)
		case info.IsDir():
			// Owner keeps write access until the walk is done so read-only
			// directories can still be filled.
			err = fs.Mkdir(target, info.Mode().Perm()|0700)
			if err != nil {
				err = db.IOError("create directory", target, err)
			} else {
				dirs = append(dirs, dirMode{target, info.Mode().Perm()})
			}
		case info.Mode().IsRegular():
			err = copyFile(fs, path, target, info)
		default:
			return db.IOError("copy", path, fmt.Errorf("unsupported file mode %s", info.Mode()))
		}
		if top {
			if found, _ := present(fs, target); found {
				created = append(created, target)
			}
		}
		return err
	})
	if err != nil {
		return created, err
	}

	// Walk order is parents first, so reversing applies modes deepest first.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := fs.Chmod(dirs[i].path, dirs[i].perm); err != nil {
			return created, db.IOError("chmod", dirs[i].path, err)
		}
	}
	return created, nil
}

func present(fs afero.Fs, path string) (bool, error) {
	if l, ok := fs.(afero.Lstater); ok {
		_, _, err := l.LstatIfPossible(path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return afero.Exists(fs, path)
}

func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return db.IOError("open", src, err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return db.IOError("create", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = multierr.Append(err, db.IOError("close", dst, cerr))
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return db.IOError("copy", dst, err)
	}
	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return db.IOError("chmod", dst, err)
	}
	return nil
}

func copySymlink(fs afero.Fs, src, dst string) error {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return db.IOError("read link", src, afero.ErrNoReadlink)
	}
	linker, ok := fs.(afero.Linker)
	if !ok {
		return db.IOError("symlink", dst, afero.ErrNoSymlink)
	}

	link, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return db.IOError("read link", src, err)
	}
	if err := linker.SymlinkIfPossible(link, dst); err != nil {
		return db.IOError("symlink", dst, err)
	}
	return nil
}

// removeAll deletes the given paths. Missing paths are not an error.
func removeAll(fs afero.Fs, paths []string) error {
	var errs error
	for i := len(paths) - 1; i >= 0; i-- {
		// Read-only directories cannot be emptied otherwise.
		_ = afero.Walk(fs, paths[i], func(path string, info os.FileInfo, err error) error {
			if err == nil && info.IsDir() {
				_ = fs.Chmod(path, info.Mode().Perm()|0700)
			}
			return nil
		})
		if err := fs.RemoveAll(paths[i]); err != nil {
			errs = multierr.Append(errs, db.IOError("remove", paths[i], err))
		}
	}
	return errs
}

// resolveRoot follows symlinks at path itself, so a linked install directory
// is copied by its content rather than as a link. Filesystems without
// symlink support return path unchanged.
func resolveRoot(fs afero.Fs, path string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, canRead := fs.(afero.LinkReader)

	for hops := 0; hops < maxLinkHops; hops++ {
		info, lstatCalled, err := lstater.LstatIfPossible(path)
		if err != nil {
			if os.IsNotExist(err) {
				return path, nil
			}
			return "", db.IOError("inspect", path, err)
		}
		if !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		if !canRead {
			return "", db.IOError("read link", path, afero.ErrNoReadlink)
		}
		link, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", db.IOError("read link", path, err)
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(path), link)
		}
		path = filepath.Clean(link)
	}
	return "", db.IOError("resolve", path, errors.New("too many levels of symbolic links"))
}

const maxLinkHops = 40

// isEmptyDir reports whether dir exists and has no entries.
func isEmptyDir(fs afero.Fs, dir string) (exists, empty bool, err error) {
	exists, err = afero.DirExists(fs, dir)
	if err != nil || !exists {
		return exists, false, err
	}
	empty, err = afero.IsEmpty(fs, dir)
	return true, empty, err
}
