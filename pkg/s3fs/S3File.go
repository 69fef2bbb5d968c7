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
	"path/filepath"
	"strings"
	"sync"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

// S3File is a single object.
type S3File struct {
	s3fs *S3FileSystem
	mu   sync.RWMutex
	key  string
}

func (f *S3File) Key() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.key
}

func (f *S3File) Name() string {
	return path.Base(f.Key())
}

func (f *S3File) FullPath() string {
	return f.s3fs.FullPath(f.Key())
}

func (f *S3File) Open(ctx context.Context, access fs.FileAccess) (fs.Stream, error) {
	key := f.Key()
	headObjectOutput, err := f.s3fs.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	fullPath := f.s3fs.FullPath(key)
	switch access {
	case fs.Read:
		rs := NewReadSeeker(
			0,
			headObjectOutput.ContentLength,
			func(offset int64, p []byte) (int, error) {
				return f.s3fs.getRange(ctx, key, offset, p)
			},
		)
		return fs.NewStream(&readOnlyStream{ReadSeeker: rs, name: fullPath}, access, fullPath), nil
	case fs.Write, fs.ReadWrite:
		data, err := f.s3fs.getObject(ctx, key)
		if err != nil {
			return nil, err
		}
		ws, err := NewWriteStream(fullPath, data, func(data []byte) error {
			return f.s3fs.putObject(ctx, key, data)
		})
		if err != nil {
			return nil, err
		}
		return fs.NewStream(ws, access, fullPath), nil
	}
	return nil, fmt.Errorf("invalid file access %q", access)
}

func (f *S3File) Rename(ctx context.Context, newName string, option fs.NameCollisionOption) error {
	if err := fs.ValidateName("rename", newName); err != nil {
		return err
	}
	return f.move(ctx, "rename", f.s3fs.Join(path.Dir(f.Key()), newName), option)
}

// Move moves the object to a key in the same bucket.
// The new path is either a relative key or a path in the format s3://bucket/key.
// Absolute local paths and other URL schemes are not supported.
func (f *S3File) Move(ctx context.Context, newPath string, option fs.NameCollisionOption) error {
	key := CleanKey(newPath)
	switch {
	case strings.HasPrefix(newPath, Scheme):
		bucket, k, err := ParsePath(newPath)
		if err != nil {
			return err
		}
		if bucket != f.s3fs.bucket {
			return fs.PathError("move", newPath, fs.ErrUnsupported)
		}
		key = k
	case fs.HasScheme(newPath), strings.HasPrefix(newPath, "/"), filepath.IsAbs(newPath):
		return fs.PathError("move", newPath, fs.ErrUnsupported)
	}
	if len(key) == 0 {
		return fs.PathError("move", newPath, fs.ErrInvalidName)
	}
	return f.move(ctx, "move", key, option)
}

func (f *S3File) move(ctx context.Context, op string, target string, option fs.NameCollisionOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if target == f.key {
		return nil
	}

	if _, err := f.s3fs.HeadObject(ctx, f.key); err != nil {
		return err
	}

	fileExists, err := f.s3fs.objectExists(ctx, target)
	if err != nil {
		return err
	}
	folderExists := false
	if !fileExists {
		folderExists, err = f.s3fs.folderExists(ctx, target)
		if err != nil {
			return err
		}
	}
	if fileExists || folderExists {
		switch option {
		case fs.FailIfExists:
			return f.s3fs.pathError(op, target, iofs.ErrExist)
		case fs.ReplaceExisting:
			if folderExists {
				// a file never replaces a folder
				return f.s3fs.pathError(op, target, iofs.ErrExist)
			}
		case fs.GenerateUniqueName:
			dir := path.Dir(target)
			name, err := fs.UniqueName(path.Base(target), func(candidate string) (bool, error) {
				return f.s3fs.exists(ctx, f.s3fs.Join(dir, candidate))
			})
			if err != nil {
				return err
			}
			target = f.s3fs.Join(dir, name)
		default:
			return fmt.Errorf("invalid name collision option %q", option)
		}
	}

	if err := f.s3fs.moveObject(ctx, f.key, target); err != nil {
		return err
	}
	f.key = target
	return nil
}

func (f *S3File) Delete(ctx context.Context) error {
	key := f.Key()
	if _, err := f.s3fs.HeadObject(ctx, key); err != nil {
		return err
	}
	return f.s3fs.deleteObject(ctx, key)
}

func (f *S3File) WriteAllBytes(ctx context.Context, data []byte) error {
	return f.s3fs.putObject(ctx, f.Key(), data)
}

func (f *S3File) WriteAllLines(ctx context.Context, lines []string) error {
	return f.s3fs.putObject(ctx, f.Key(), fs.JoinLines(lines))
}

func (f *S3File) WriteAllText(ctx context.Context, text string) error {
	return f.s3fs.putObject(ctx, f.Key(), []byte(text))
}

func (f *S3File) ReadAllBytes(ctx context.Context) ([]byte, error) {
	return f.s3fs.getObject(ctx, f.Key())
}

func (f *S3File) ReadAllText(ctx context.Context) (string, error) {
	data, err := f.ReadAllBytes(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var _ fs.File = (*S3File)(nil)
