// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/deptofdefense/netstorage/pkg/fs"
	"github.com/deptofdefense/netstorage/pkg/lfs"
	"github.com/deptofdefense/netstorage/pkg/s3fs"
)

const (
	PrefixLocal   = "local:"
	PrefixRoaming = "roaming:"
)

// FileSystem routes paths in the format s3://bucket/key to the S3 adapter and every other path to the local adapter.
type FileSystem struct {
	local      fs.Folder
	roaming    fs.Folder
	lfs        *lfs.LocalFileSystem
	client     s3fs.Client
	maxEntries int
	mu         sync.Mutex
	buckets    map[string]*s3fs.S3FileSystem
}

type Options struct {
	// LocalRoot is the path to the local storage root folder.
	LocalRoot string
	// RoamingRoot is the path to the roaming storage root folder.
	RoamingRoot string
	// Fs backs local paths.  Defaults to the operating system.
	Fs afero.Fs
	// S3Client serves paths in the format s3://bucket/key.  If nil, then S3 paths are not supported.
	S3Client s3fs.Client
	// MaxEntries limits S3 folder listings.  Zero or -1 is unlimited.
	MaxEntries int
}

func IsS3Path(p string) bool {
	return strings.HasPrefix(p, s3fs.Scheme)
}

func (sfs *FileSystem) bucket(name string) (*s3fs.S3FileSystem, error) {
	if sfs.client == nil {
		return nil, fs.PathError("open", s3fs.Scheme+name, fs.ErrUnsupported)
	}
	sfs.mu.Lock()
	defer sfs.mu.Unlock()
	if b, ok := sfs.buckets[name]; ok {
		return b, nil
	}
	b := s3fs.NewS3FileSystem(name, sfs.client, sfs.maxEntries)
	sfs.buckets[name] = b
	return b, nil
}

func (sfs *FileSystem) root(ctx context.Context, p string) (fs.Folder, error) {
	if IsS3Path(p) {
		bucket, prefix, err := s3fs.ParsePath(p)
		if err != nil {
			return nil, err
		}
		b, err := sfs.bucket(bucket)
		if err != nil {
			return nil, err
		}
		folder, err := b.Root(ctx, prefix)
		if err != nil {
			return nil, err
		}
		return folder, nil
	}
	folder, err := sfs.lfs.Root(ctx, p)
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (sfs *FileSystem) LocalStorage() fs.Folder {
	return sfs.local
}

func (sfs *FileSystem) RoamingStorage() fs.Folder {
	return sfs.roaming
}

// ResolvePath returns the full path for p.
// Paths starting with "local:" or "roaming:" are relative to the matching root folder and cannot escape it.
// Other relative paths are relative to the local root folder.
func (sfs *FileSystem) ResolvePath(p string) string {
	switch {
	case strings.HasPrefix(p, PrefixLocal):
		return join(sfs.local.FullPath(), strings.TrimPrefix(p, PrefixLocal))
	case strings.HasPrefix(p, PrefixRoaming):
		return join(sfs.roaming.FullPath(), strings.TrimPrefix(p, PrefixRoaming))
	case IsS3Path(p), filepath.IsAbs(p):
		return p
	}
	return join(sfs.local.FullPath(), p)
}

// SplitPath returns the path of the parent folder and the name of the last element of p.
func SplitPath(p string) (string, string, error) {
	if IsS3Path(p) {
		bucket, key, err := s3fs.ParsePath(p)
		if err != nil {
			return "", "", err
		}
		if len(key) == 0 {
			return "", "", fs.PathError("split", p, fs.ErrInvalidName)
		}
		return strings.TrimSuffix(s3fs.Scheme+bucket+"/"+path.Dir(key), "/."), path.Base(key), nil
	}
	p = filepath.Clean(p)
	name := filepath.Base(p)
	if name == string(filepath.Separator) || name == "." || name == ".." {
		return "", "", fs.PathError("split", p, fs.ErrInvalidName)
	}
	return filepath.Dir(p), name, nil
}

// Overlaps returns true if the two root folders are the same folder or one contains the other.
// Local paths never overlap S3 paths.
func Overlaps(a string, b string) bool {
	if IsS3Path(a) != IsS3Path(b) {
		return false
	}
	if IsS3Path(a) {
		bucketA, keyA, err := s3fs.ParsePath(a)
		if err != nil {
			return false
		}
		bucketB, keyB, err := s3fs.ParsePath(b)
		if err != nil {
			return false
		}
		return bucketA == bucketB && (contains(keyA, keyB, "/") || contains(keyB, keyA, "/"))
	}
	a, b = filepath.Clean(a), filepath.Clean(b)
	sep := string(filepath.Separator)
	return contains(a, b, sep) || contains(b, a, sep)
}

func contains(parent string, child string, sep string) bool {
	if len(parent) == 0 || parent == child {
		return true
	}
	return strings.HasPrefix(child, strings.TrimSuffix(parent, sep)+sep)
}

func join(root string, rel string) string {
	rel = path.Clean("/" + filepath.ToSlash(rel))
	if rel == "/" {
		return root
	}
	if IsS3Path(root) {
		return root + rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func (sfs *FileSystem) GetFileFromPath(ctx context.Context, p string) (fs.File, error) {
	if IsS3Path(p) {
		bucket, key, err := s3fs.ParsePath(p)
		if err != nil {
			return nil, err
		}
		b, err := sfs.bucket(bucket)
		if err != nil {
			return nil, err
		}
		f, err := b.GetFile(ctx, key)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := sfs.lfs.GetFile(ctx, p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (sfs *FileSystem) GetFolderFromPath(ctx context.Context, p string) (fs.Folder, error) {
	if IsS3Path(p) {
		bucket, prefix, err := s3fs.ParsePath(p)
		if err != nil {
			return nil, err
		}
		b, err := sfs.bucket(bucket)
		if err != nil {
			return nil, err
		}
		folder, err := b.GetFolder(ctx, prefix)
		if err != nil {
			return nil, err
		}
		return folder, nil
	}
	folder, err := sfs.lfs.GetFolder(ctx, p)
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// NewFileSystem creates the local and roaming root folders if they do not exist.
// The roots must not overlap.
func NewFileSystem(ctx context.Context, options Options) (*FileSystem, error) {
	if len(options.LocalRoot) == 0 {
		return nil, fmt.Errorf("local root is missing")
	}
	if len(options.RoamingRoot) == 0 {
		return nil, fmt.Errorf("roaming root is missing")
	}
	if Overlaps(options.LocalRoot, options.RoamingRoot) {
		return nil, fmt.Errorf("local root %q and roaming root %q must not be the same folder or contain each other", options.LocalRoot, options.RoamingRoot)
	}
	localFileSystem := lfs.NewOsFileSystem()
	if options.Fs != nil {
		localFileSystem = lfs.NewLocalFileSystem(options.Fs)
	}
	maxEntries := options.MaxEntries
	if maxEntries <= 0 {
		maxEntries = -1
	}
	sfs := &FileSystem{
		lfs:        localFileSystem,
		client:     options.S3Client,
		maxEntries: maxEntries,
		buckets:    map[string]*s3fs.S3FileSystem{},
	}
	local, err := sfs.root(ctx, options.LocalRoot)
	if err != nil {
		return nil, fmt.Errorf("error initializing local storage %q: %w", options.LocalRoot, err)
	}
	sfs.local = local
	roaming, err := sfs.root(ctx, options.RoamingRoot)
	if err != nil {
		return nil, fmt.Errorf("error initializing roaming storage %q: %w", options.RoamingRoot, err)
	}
	sfs.roaming = roaming
	return sfs, nil
}

var _ fs.FileSystem = (*FileSystem)(nil)
