// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

// S3Folder is a key prefix.  The empty prefix is the root of the bucket.
type S3Folder struct {
	s3fs   *S3FileSystem
	prefix string
}

func (d *S3Folder) Prefix() string {
	return d.prefix
}

func (d *S3Folder) Name() string {
	if len(d.prefix) == 0 {
		return d.s3fs.bucket
	}
	return path.Base(d.prefix)
}

func (d *S3Folder) FullPath() string {
	return d.s3fs.FullPath(d.prefix)
}

func (d *S3Folder) child(name string) string {
	return d.s3fs.Join(d.prefix, name)
}

func (d *S3Folder) uniqueName(ctx context.Context, name string) (string, error) {
	return fs.UniqueName(name, func(candidate string) (bool, error) {
		return d.s3fs.exists(ctx, d.child(candidate))
	})
}

func (d *S3Folder) CreateFile(ctx context.Context, name string, option fs.CreationCollisionOption) (fs.File, error) {
	if err := fs.ValidateName("create", name); err != nil {
		return nil, err
	}
	result, err := d.CheckExists(ctx, name)
	if err != nil {
		return nil, err
	}
	key := d.child(name)
	if result != fs.NotFound {
		switch option {
		case fs.CreateGenerateUniqueName:
			unique, err := d.uniqueName(ctx, name)
			if err != nil {
				return nil, err
			}
			key = d.child(unique)
		case fs.CreateOpenIfExists:
			if result == fs.FolderExists {
				return nil, d.s3fs.pathError("create", key, iofs.ErrExist)
			}
			return &S3File{s3fs: d.s3fs, key: key}, nil
		case fs.CreateReplaceExisting:
			if result == fs.FolderExists {
				// a file never replaces a folder
				return nil, d.s3fs.pathError("create", key, iofs.ErrExist)
			}
		case fs.CreateFailIfExists:
			return nil, d.s3fs.pathError("create", key, iofs.ErrExist)
		default:
			return nil, fmt.Errorf("invalid creation collision option %q", option)
		}
	}
	if err := d.s3fs.putObject(ctx, key, []byte{}); err != nil {
		return nil, err
	}
	return &S3File{s3fs: d.s3fs, key: key}, nil
}

func (d *S3Folder) GetFile(ctx context.Context, name string) (fs.File, error) {
	if err := fs.ValidateName("getfile", name); err != nil {
		return nil, err
	}
	f, err := d.s3fs.GetFile(ctx, d.child(name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *S3Folder) GetFiles(ctx context.Context) ([]fs.File, error) {
	keys, _, err := d.s3fs.ReadDir(ctx, d.prefix)
	if err != nil {
		return nil, err
	}
	files := make([]fs.File, 0, len(keys))
	for _, key := range keys {
		files = append(files, &S3File{s3fs: d.s3fs, key: key})
	}
	return files, nil
}

func (d *S3Folder) CreateFolder(ctx context.Context, name string, option fs.CreationCollisionOption) (fs.Folder, error) {
	if err := fs.ValidateName("mkdir", name); err != nil {
		return nil, err
	}
	result, err := d.CheckExists(ctx, name)
	if err != nil {
		return nil, err
	}
	prefix := d.child(name)
	if result != fs.NotFound {
		switch option {
		case fs.CreateGenerateUniqueName:
			unique, err := d.uniqueName(ctx, name)
			if err != nil {
				return nil, err
			}
			prefix = d.child(unique)
		case fs.CreateOpenIfExists:
			if result == fs.FileExists {
				return nil, d.s3fs.pathError("mkdir", prefix, iofs.ErrExist)
			}
			return &S3Folder{s3fs: d.s3fs, prefix: prefix}, nil
		case fs.CreateReplaceExisting:
			if result == fs.FileExists {
				// a folder never replaces a file
				return nil, d.s3fs.pathError("mkdir", prefix, iofs.ErrExist)
			}
			if err := d.s3fs.DeletePrefix(ctx, prefix); err != nil {
				return nil, fmt.Errorf("error removing existing folder %q: %w", d.s3fs.FullPath(prefix), err)
			}
		case fs.CreateFailIfExists:
			return nil, d.s3fs.pathError("mkdir", prefix, iofs.ErrExist)
		default:
			return nil, fmt.Errorf("invalid creation collision option %q", option)
		}
	}
	if err := d.s3fs.putObject(ctx, prefix+"/", []byte{}); err != nil {
		return nil, err
	}
	return &S3Folder{s3fs: d.s3fs, prefix: prefix}, nil
}

func (d *S3Folder) GetFolder(ctx context.Context, name string) (fs.Folder, error) {
	if err := fs.ValidateName("getfolder", name); err != nil {
		return nil, err
	}
	folder, err := d.s3fs.GetFolder(ctx, d.child(name))
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (d *S3Folder) GetFolders(ctx context.Context) ([]fs.Folder, error) {
	_, prefixes, err := d.s3fs.ReadDir(ctx, d.prefix)
	if err != nil {
		return nil, err
	}
	folders := make([]fs.Folder, 0, len(prefixes))
	for _, prefix := range prefixes {
		folders = append(folders, &S3Folder{s3fs: d.s3fs, prefix: prefix})
	}
	return folders, nil
}

func (d *S3Folder) CheckExists(ctx context.Context, name string) (fs.ExistenceCheckResult, error) {
	if err := fs.ValidateName("exists", name); err != nil {
		return fs.NotFound, err
	}
	key := d.child(name)
	ok, err := d.s3fs.objectExists(ctx, key)
	if err != nil {
		return fs.NotFound, err
	}
	if ok {
		return fs.FileExists, nil
	}
	ok, err = d.s3fs.folderExists(ctx, key)
	if err != nil {
		return fs.NotFound, err
	}
	if ok {
		return fs.FolderExists, nil
	}
	return fs.NotFound, nil
}

func (d *S3Folder) Delete(ctx context.Context) error {
	if d.s3fs.containsRoot(d.prefix) {
		return d.s3fs.pathError("delete", d.prefix, fs.ErrRootFolder)
	}
	ok, err := d.s3fs.folderExists(ctx, d.prefix)
	if err != nil {
		return err
	}
	if !ok {
		return d.s3fs.pathError("delete", d.prefix, iofs.ErrNotExist)
	}
	return d.s3fs.DeletePrefix(ctx, d.prefix)
}

var _ fs.Folder = (*S3Folder)(nil)
