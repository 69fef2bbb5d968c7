// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

type LocalFile struct {
	lfs  *LocalFileSystem
	mu   sync.RWMutex
	path string
}

func (f *LocalFile) Name() string {
	return filepath.Base(f.FullPath())
}

func (f *LocalFile) FullPath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

func (f *LocalFile) Open(ctx context.Context, access fs.FileAccess) (fs.Stream, error) {
	flag := os.O_RDONLY
	switch access {
	case fs.Read:
	case fs.Write:
		flag = os.O_WRONLY
	case fs.ReadWrite:
		flag = os.O_RDWR
	default:
		return nil, fmt.Errorf("invalid file access %q", access)
	}
	p := f.FullPath()
	fi, err := f.lfs.fs.Stat(p)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fs.PathError("open", p, iofs.ErrNotExist)
	}
	file, err := f.lfs.fs.OpenFile(p, flag, 0)
	if err != nil {
		return nil, err
	}
	return fs.NewStream(file, access, p), nil
}

func (f *LocalFile) Rename(ctx context.Context, newName string, option fs.NameCollisionOption) error {
	if err := fs.ValidateName("rename", newName); err != nil {
		return err
	}
	return f.move("rename", filepath.Join(filepath.Dir(f.FullPath()), newName), option)
}

// Move moves the file to a local path.
// Paths with a URL scheme, such as s3://bucket/key, are not supported.
func (f *LocalFile) Move(ctx context.Context, newPath string, option fs.NameCollisionOption) error {
	if fs.HasScheme(newPath) {
		return fs.PathError("move", newPath, fs.ErrUnsupported)
	}
	newPath = filepath.Clean(newPath)
	parent := filepath.Dir(newPath)
	ok, err := afero.DirExists(f.lfs.fs, parent)
	if err != nil {
		return err
	}
	if !ok {
		return fs.PathError("move", parent, iofs.ErrNotExist)
	}
	return f.move("move", newPath, option)
}

func (f *LocalFile) move(op string, target string, option fs.NameCollisionOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if target == f.path {
		return nil
	}

	fi, err := f.lfs.fs.Stat(f.path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fs.PathError(op, f.path, iofs.ErrNotExist)
	}

	targetInfo, err := f.lfs.fs.Stat(target)
	if err != nil && !f.lfs.IsNotExist(err) {
		return err
	}
	if targetInfo != nil {
		switch option {
		case fs.FailIfExists:
			return fs.PathError(op, target, iofs.ErrExist)
		case fs.ReplaceExisting:
			if targetInfo.IsDir() {
				// a file never replaces a folder
				return fs.PathError(op, target, iofs.ErrExist)
			}
		case fs.GenerateUniqueName:
			dir := filepath.Dir(target)
			name, err := fs.UniqueName(filepath.Base(target), func(candidate string) (bool, error) {
				return f.lfs.exists(filepath.Join(dir, candidate))
			})
			if err != nil {
				return err
			}
			target = filepath.Join(dir, name)
		default:
			return fmt.Errorf("invalid name collision option %q", option)
		}
	}

	if err := f.lfs.fs.Rename(f.path, target); err != nil {
		return err
	}
	f.path = target
	return nil
}

func (f *LocalFile) Delete(ctx context.Context) error {
	p := f.FullPath()
	fi, err := f.lfs.fs.Stat(p)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fs.PathError("delete", p, iofs.ErrNotExist)
	}
	return f.lfs.fs.Remove(p)
}

func (f *LocalFile) WriteAllBytes(ctx context.Context, data []byte) error {
	return f.lfs.WriteFile(ctx, f.FullPath(), data)
}

func (f *LocalFile) WriteAllLines(ctx context.Context, lines []string) error {
	return f.lfs.WriteFile(ctx, f.FullPath(), fs.JoinLines(lines))
}

func (f *LocalFile) WriteAllText(ctx context.Context, text string) error {
	return f.lfs.WriteFile(ctx, f.FullPath(), []byte(text))
}

func (f *LocalFile) ReadAllBytes(ctx context.Context) ([]byte, error) {
	p := f.FullPath()
	if ok, err := afero.IsDir(f.lfs.fs, p); err == nil && ok {
		return nil, fs.PathError("read", p, iofs.ErrNotExist)
	}
	return afero.ReadFile(f.lfs.fs, p)
}

func (f *LocalFile) ReadAllText(ctx context.Context) (string, error) {
	data, err := f.ReadAllBytes(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var _ fs.File = (*LocalFile)(nil)
