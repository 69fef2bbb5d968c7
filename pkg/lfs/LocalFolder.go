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

	"github.com/spf13/afero"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

type LocalFolder struct {
	lfs  *LocalFileSystem
	path string
}

func (d *LocalFolder) Name() string {
	return filepath.Base(d.path)
}

func (d *LocalFolder) FullPath() string {
	return d.path
}

// stat returns the file info of the named child, or nil if the child does not exist.
func (d *LocalFolder) stat(name string) (os.FileInfo, error) {
	fi, err := d.lfs.fs.Stat(filepath.Join(d.path, name))
	if err != nil {
		if d.lfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return fi, nil
}

func (d *LocalFolder) uniqueName(name string) (string, error) {
	return fs.UniqueName(name, func(candidate string) (bool, error) {
		return d.lfs.exists(filepath.Join(d.path, candidate))
	})
}

func (d *LocalFolder) CreateFile(ctx context.Context, name string, option fs.CreationCollisionOption) (fs.File, error) {
	if err := fs.ValidateName("create", name); err != nil {
		return nil, err
	}
	fi, err := d.stat(name)
	if err != nil {
		return nil, err
	}
	if fi != nil {
		switch option {
		case fs.CreateGenerateUniqueName:
			unique, err := d.uniqueName(name)
			if err != nil {
				return nil, err
			}
			name = unique
		case fs.CreateOpenIfExists:
			if fi.IsDir() {
				return nil, fs.PathError("create", filepath.Join(d.path, name), iofs.ErrExist)
			}
			return &LocalFile{lfs: d.lfs, path: filepath.Join(d.path, name)}, nil
		case fs.CreateReplaceExisting:
			// WriteFile refuses to replace a folder
		case fs.CreateFailIfExists:
			return nil, fs.PathError("create", filepath.Join(d.path, name), iofs.ErrExist)
		default:
			return nil, fmt.Errorf("invalid creation collision option %q", option)
		}
	}
	p := filepath.Join(d.path, name)
	if err := d.lfs.WriteFile(ctx, p, []byte{}); err != nil {
		return nil, err
	}
	return &LocalFile{lfs: d.lfs, path: p}, nil
}

func (d *LocalFolder) GetFile(ctx context.Context, name string) (fs.File, error) {
	if err := fs.ValidateName("getfile", name); err != nil {
		return nil, err
	}
	f, err := d.lfs.GetFile(ctx, filepath.Join(d.path, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *LocalFolder) GetFiles(ctx context.Context) ([]fs.File, error) {
	fileInfos, err := afero.ReadDir(d.lfs.fs, d.path)
	if err != nil {
		return nil, err
	}
	files := []fs.File{}
	for _, fi := range fileInfos {
		if !fi.IsDir() {
			files = append(files, &LocalFile{lfs: d.lfs, path: filepath.Join(d.path, fi.Name())})
		}
	}
	return files, nil
}

func (d *LocalFolder) CreateFolder(ctx context.Context, name string, option fs.CreationCollisionOption) (fs.Folder, error) {
	if err := fs.ValidateName("mkdir", name); err != nil {
		return nil, err
	}
	fi, err := d.stat(name)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(d.path, name)
	if fi != nil {
		switch option {
		case fs.CreateGenerateUniqueName:
			unique, err := d.uniqueName(name)
			if err != nil {
				return nil, err
			}
			p = filepath.Join(d.path, unique)
		case fs.CreateOpenIfExists:
			if !fi.IsDir() {
				return nil, fs.PathError("mkdir", p, iofs.ErrExist)
			}
			return &LocalFolder{lfs: d.lfs, path: p}, nil
		case fs.CreateReplaceExisting:
			if !fi.IsDir() {
				// a folder never replaces a file
				return nil, fs.PathError("mkdir", p, iofs.ErrExist)
			}
			if d.lfs.containsRoot(p) {
				return nil, fs.PathError("mkdir", p, fs.ErrRootFolder)
			}
			if err := d.lfs.fs.RemoveAll(p); err != nil {
				return nil, fmt.Errorf("error removing existing folder %q: %w", p, err)
			}
		case fs.CreateFailIfExists:
			return nil, fs.PathError("mkdir", p, iofs.ErrExist)
		default:
			return nil, fmt.Errorf("invalid creation collision option %q", option)
		}
	}
	if err := d.lfs.fs.Mkdir(p, 0755); err != nil {
		return nil, err
	}
	return &LocalFolder{lfs: d.lfs, path: p}, nil
}

func (d *LocalFolder) GetFolder(ctx context.Context, name string) (fs.Folder, error) {
	if err := fs.ValidateName("getfolder", name); err != nil {
		return nil, err
	}
	folder, err := d.lfs.GetFolder(ctx, filepath.Join(d.path, name))
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (d *LocalFolder) GetFolders(ctx context.Context) ([]fs.Folder, error) {
	fileInfos, err := afero.ReadDir(d.lfs.fs, d.path)
	if err != nil {
		return nil, err
	}
	folders := []fs.Folder{}
	for _, fi := range fileInfos {
		if fi.IsDir() {
			folders = append(folders, &LocalFolder{lfs: d.lfs, path: filepath.Join(d.path, fi.Name())})
		}
	}
	return folders, nil
}

func (d *LocalFolder) CheckExists(ctx context.Context, name string) (fs.ExistenceCheckResult, error) {
	if err := fs.ValidateName("exists", name); err != nil {
		return fs.NotFound, err
	}
	fi, err := d.stat(name)
	if err != nil {
		return fs.NotFound, err
	}
	if fi == nil {
		return fs.NotFound, nil
	}
	if fi.IsDir() {
		return fs.FolderExists, nil
	}
	return fs.FileExists, nil
}

func (d *LocalFolder) Delete(ctx context.Context) error {
	if d.lfs.containsRoot(d.path) {
		return fs.PathError("delete", d.path, fs.ErrRootFolder)
	}
	fi, err := d.lfs.fs.Stat(d.path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fs.PathError("delete", d.path, iofs.ErrNotExist)
	}
	return d.lfs.fs.RemoveAll(d.path)
}

var _ fs.Folder = (*LocalFolder)(nil)
