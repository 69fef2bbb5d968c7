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
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/spf13/afero"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

// LocalFileSystem adapts an afero.Fs to the files and folders of package fs.
type LocalFileSystem struct {
	fs    afero.Fs
	mu    sync.RWMutex
	roots map[string]struct{}
}

func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return fs.IsNotExist(err)
}

// containsRoot returns true if the named folder is a root storage folder or contains one.
func (lfs *LocalFileSystem) containsRoot(name string) bool {
	name = filepath.Clean(name)
	prefix := strings.TrimSuffix(name, string(filepath.Separator)) + string(filepath.Separator)
	lfs.mu.RLock()
	defer lfs.mu.RUnlock()
	for root := range lfs.roots {
		if root == name || strings.HasPrefix(root, prefix) {
			return true
		}
	}
	return false
}

// exists returns true if anything, file or folder, exists at the given path.
func (lfs *LocalFileSystem) exists(name string) (bool, error) {
	_, err := lfs.fs.Stat(name)
	if err == nil {
		return true, nil
	}
	if lfs.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Root creates the folder at the given path if it does not exist and returns it as a root storage folder.
func (lfs *LocalFileSystem) Root(ctx context.Context, name string) (*LocalFolder, error) {
	name = filepath.Clean(name)
	if err := lfs.fs.MkdirAll(name, 0755); err != nil {
		return nil, fmt.Errorf("error creating root folder %q: %w", name, err)
	}
	lfs.mu.Lock()
	lfs.roots[name] = struct{}{}
	lfs.mu.Unlock()
	return &LocalFolder{lfs: lfs, path: name}, nil
}

// GetFile returns the file at the given path.
// If the path does not exist or is a folder, then returns an error wrapping fs.ErrNotExist.
func (lfs *LocalFileSystem) GetFile(ctx context.Context, name string) (*LocalFile, error) {
	name = filepath.Clean(name)
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fs.PathError("getfile", name, iofs.ErrNotExist)
	}
	return &LocalFile{lfs: lfs, path: name}, nil
}

// GetFolder returns the folder at the given path.
// If the path does not exist or is a file, then returns an error wrapping fs.ErrNotExist.
func (lfs *LocalFileSystem) GetFolder(ctx context.Context, name string) (*LocalFolder, error) {
	name = filepath.Clean(name)
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fs.PathError("getfolder", name, iofs.ErrNotExist)
	}
	return &LocalFolder{lfs: lfs, path: name}, nil
}

// WriteFile writes data to a temporary file next to the named file and renames it over the named file.
func (lfs *LocalFileSystem) WriteFile(ctx context.Context, name string, data []byte) error {
	perm := os.FileMode(0644)
	fi, err := lfs.fs.Stat(name)
	if err != nil && !lfs.IsNotExist(err) {
		return err
	}
	if fi != nil {
		if fi.IsDir() {
			return fs.PathError("write", name, iofs.ErrExist)
		}
		perm = fi.Mode().Perm()
	}
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("error generating name for temporary file: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+"."+id.String()+".tmp")
	if err := afero.WriteFile(lfs.fs, tmp, data, perm); err != nil {
		return fmt.Errorf("error writing temporary file %q: %w", tmp, err)
	}
	if err := lfs.fs.Rename(tmp, name); err != nil {
		_ = lfs.fs.Remove(tmp)
		return fmt.Errorf("error renaming temporary file %q to %q: %w", tmp, name, err)
	}
	return nil
}

// NewLocalFileSystem returns a file system backed by the given afero.Fs.
func NewLocalFileSystem(afs afero.Fs) *LocalFileSystem {
	return &LocalFileSystem{
		fs:    afs,
		roots: map[string]struct{}{},
	}
}

// NewOsFileSystem returns a file system backed by the operating system.
func NewOsFileSystem() *LocalFileSystem {
	return NewLocalFileSystem(afero.NewOsFs())
}
