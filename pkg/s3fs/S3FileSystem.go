// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

const (
	Scheme = "s3://"
)

const (
	// maximum number of keys accepted by a single DeleteObjects call
	deleteBatchSize = 1000
	// maximum number of concurrent DeleteObjects calls
	deleteConcurrency = 4
)

// S3FileSystem stores files as objects in a single bucket and folders as key prefixes.
type S3FileSystem struct {
	bucket     string
	client     Client
	maxEntries int
	mu         sync.RWMutex
	roots      map[string]struct{}
}

// ParsePath returns the bucket and key for a path in the format s3://bucket/key.
func ParsePath(p string) (string, string, error) {
	if !strings.HasPrefix(p, Scheme) {
		return "", "", fmt.Errorf("path %q does not start with %q", p, Scheme)
	}
	parts := strings.SplitN(p[len(Scheme):], "/", 2)
	if len(parts[0]) == 0 {
		return "", "", fmt.Errorf("path %q is missing a bucket", p)
	}
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], CleanKey(parts[1]), nil
}

// CleanKey removes leading and trailing slashes and resolves "." and ".." elements.
func CleanKey(key string) string {
	key = strings.Trim(key, "/")
	if len(key) == 0 {
		return ""
	}
	key = path.Clean("/" + key)
	return strings.TrimPrefix(key, "/")
}

func (s3fs *S3FileSystem) Bucket() string {
	return s3fs.bucket
}

func (s3fs *S3FileSystem) FullPath(key string) string {
	if len(key) == 0 {
		return Scheme + s3fs.bucket
	}
	return Scheme + s3fs.bucket + "/" + key
}

func (s3fs *S3FileSystem) IsNotExist(err error) bool {
	if errors.Is(err, iofs.ErrNotExist) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var responseError *http.ResponseError
	if errors.As(err, &responseError) {
		if responseError.HTTPStatusCode() == 404 {
			return true
		}
	}
	return false
}

// pathError wraps err in an *fs.PathError, translating S3 not found errors to fs.ErrNotExist.
func (s3fs *S3FileSystem) pathError(op string, key string, err error) error {
	if err == nil {
		return nil
	}
	if s3fs.IsNotExist(err) && !errors.Is(err, iofs.ErrNotExist) {
		err = fmt.Errorf("%w: %v", iofs.ErrNotExist, err)
	}
	return fs.PathError(op, s3fs.FullPath(key), err)
}

func (s3fs *S3FileSystem) Join(name ...string) string {
	return CleanKey(path.Join(name...))
}

// containsRoot returns true if the prefix is a root storage folder or contains one.
// The bucket root contains every prefix.
func (s3fs *S3FileSystem) containsRoot(prefix string) bool {
	if len(prefix) == 0 {
		return true
	}
	s3fs.mu.RLock()
	defer s3fs.mu.RUnlock()
	for root := range s3fs.roots {
		if root == prefix || strings.HasPrefix(root, prefix+"/") {
			return true
		}
	}
	return false
}

func (s3fs *S3FileSystem) HeadObject(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	headObjectOutput, err := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3fs.pathError("stat", key, err)
	}
	return headObjectOutput, nil
}

func (s3fs *S3FileSystem) objectExists(ctx context.Context, key string) (bool, error) {
	if len(key) == 0 {
		return false, nil
	}
	_, err := s3fs.HeadObject(ctx, key)
	if err == nil {
		return true, nil
	}
	if s3fs.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// folderExists returns true if a folder marker or any object exists under the prefix.
func (s3fs *S3FileSystem) folderExists(ctx context.Context, prefix string) (bool, error) {
	if len(prefix) == 0 {
		return true, nil
	}
	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		Prefix:  aws.String(prefix + "/"),
		MaxKeys: 1,
	})
	if err != nil {
		return false, s3fs.pathError("stat", prefix, err)
	}
	return len(listObjectsOutput.Contents) > 0 || len(listObjectsOutput.CommonPrefixes) > 0, nil
}

// exists returns true if either a file or a folder exists at the key.
func (s3fs *S3FileSystem) exists(ctx context.Context, key string) (bool, error) {
	ok, err := s3fs.objectExists(ctx, key)
	if err != nil || ok {
		return ok, err
	}
	return s3fs.folderExists(ctx, key)
}

// Root creates the folder marker for the prefix if the folder does not exist and returns it as a root storage folder.
func (s3fs *S3FileSystem) Root(ctx context.Context, prefix string) (*S3Folder, error) {
	prefix = CleanKey(prefix)
	_, err := s3fs.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s3fs.bucket),
	})
	if err != nil {
		return nil, s3fs.pathError("root", "", err)
	}
	ok, err := s3fs.folderExists(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s3fs.putObject(ctx, prefix+"/", []byte{}); err != nil {
			return nil, fmt.Errorf("error creating root folder %q: %w", s3fs.FullPath(prefix), err)
		}
	}
	s3fs.mu.Lock()
	s3fs.roots[prefix] = struct{}{}
	s3fs.mu.Unlock()
	return &S3Folder{s3fs: s3fs, prefix: prefix}, nil
}

// GetFile returns the file for the object with the given key.
func (s3fs *S3FileSystem) GetFile(ctx context.Context, key string) (*S3File, error) {
	key = CleanKey(key)
	if len(key) == 0 {
		return nil, s3fs.pathError("getfile", key, iofs.ErrNotExist)
	}
	if _, err := s3fs.HeadObject(ctx, key); err != nil {
		return nil, err
	}
	return &S3File{s3fs: s3fs, key: key}, nil
}

// GetFolder returns the folder for the given prefix.
func (s3fs *S3FileSystem) GetFolder(ctx context.Context, prefix string) (*S3Folder, error) {
	prefix = CleanKey(prefix)
	ok, err := s3fs.folderExists(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s3fs.pathError("getfolder", prefix, iofs.ErrNotExist)
	}
	return &S3Folder{s3fs: s3fs, prefix: prefix}, nil
}

// ReadDir returns the keys of the files and the prefixes of the folders directly under the prefix, sorted by name.
// If maxEntries is not -1, then at most maxEntries are returned.
func (s3fs *S3FileSystem) ReadDir(ctx context.Context, prefix string) ([]string, []string, error) {
	listPrefix := ""
	if len(prefix) > 0 {
		listPrefix = prefix + "/"
	}
	files := []string{}
	folders := []string{}
	paginator := s3.NewListObjectsV2Paginator(s3fs.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s3fs.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		listObjectsOutput, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, s3fs.pathError("readdir", prefix, err)
		}
		for _, commonPrefix := range listObjectsOutput.CommonPrefixes {
			folders = append(folders, strings.TrimSuffix(aws.ToString(commonPrefix.Prefix), "/"))
		}
		for _, object := range listObjectsOutput.Contents {
			key := aws.ToString(object.Key)
			// skip the folder marker
			if key == listPrefix {
				continue
			}
			files = append(files, key)
		}
		if s3fs.maxEntries != -1 && len(files)+len(folders) >= s3fs.maxEntries {
			break
		}
	}
	sort.Strings(files)
	sort.Strings(folders)
	if s3fs.maxEntries != -1 {
		if len(folders) > s3fs.maxEntries {
			folders = folders[:s3fs.maxEntries]
		}
		if len(folders)+len(files) > s3fs.maxEntries {
			files = files[:s3fs.maxEntries-len(folders)]
		}
	}
	return files, folders, nil
}

func (s3fs *S3FileSystem) getObject(ctx context.Context, key string) ([]byte, error) {
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3fs.pathError("read", key, err)
	}
	defer func() { _ = getObjectOutput.Body.Close() }()
	body, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return nil, s3fs.pathError("read", key, err)
	}
	return body, nil
}

func (s3fs *S3FileSystem) getRange(ctx context.Context, key string, offset int64, p []byte) (int, error) {
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+int64(len(p))-1)),
	})
	if err != nil {
		return 0, s3fs.pathError("read", key, err)
	}
	defer func() { _ = getObjectOutput.Body.Close() }()
	n, err := io.ReadFull(getObjectOutput.Body, p)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, s3fs.pathError("read", key, err)
	}
	return n, nil
}

func (s3fs *S3FileSystem) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s3fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s3fs.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: int64(len(data)),
	})
	if err != nil {
		return s3fs.pathError("write", key, err)
	}
	return nil
}

// copySource returns the URL-encoded source of a CopyObject request.
func (s3fs *S3FileSystem) copySource(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s3fs.bucket + "/" + strings.Join(segments, "/")
}

// moveObject copies the object to the destination key and deletes the source.
func (s3fs *S3FileSystem) moveObject(ctx context.Context, src string, dst string) error {
	_, err := s3fs.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s3fs.bucket),
		Key:        aws.String(dst),
		CopySource: aws.String(s3fs.copySource(src)),
	})
	if err != nil {
		return s3fs.pathError("move", src, err)
	}
	_, err = s3fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(src),
	})
	if err != nil {
		return s3fs.pathError("move", src, err)
	}
	return nil
}

func (s3fs *S3FileSystem) deleteObject(ctx context.Context, key string) error {
	_, err := s3fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3fs.pathError("delete", key, err)
	}
	return nil
}

func (s3fs *S3FileSystem) deleteBatch(ctx context.Context, keys []string) error {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}
	deleteObjectsOutput, err := s3fs.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s3fs.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   true,
		},
	})
	if err != nil {
		return err
	}
	if len(deleteObjectsOutput.Errors) > 0 {
		e := deleteObjectsOutput.Errors[0]
		return fmt.Errorf("error deleting %d objects, first error for key %q: %s", len(deleteObjectsOutput.Errors), aws.ToString(e.Key), aws.ToString(e.Message))
	}
	return nil
}

// DeletePrefix deletes the folder marker and every object under the prefix.
// Root storage folders and folders containing them are never deleted.
func (s3fs *S3FileSystem) DeletePrefix(ctx context.Context, prefix string) error {
	if s3fs.containsRoot(prefix) {
		return s3fs.pathError("delete", prefix, fs.ErrRootFolder)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(deleteConcurrency)
	paginator := s3.NewListObjectsV2Paginator(s3fs.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s3fs.bucket),
		Prefix: aws.String(prefix + "/"),
	})
	batch := make([]string, 0, deleteBatchSize)
	var listError error
	for paginator.HasMorePages() {
		listObjectsOutput, err := paginator.NextPage(egCtx)
		if err != nil {
			listError = err
			break
		}
		for _, object := range listObjectsOutput.Contents {
			batch = append(batch, aws.ToString(object.Key))
			if len(batch) == deleteBatchSize {
				keys := batch
				eg.Go(func() error { return s3fs.deleteBatch(egCtx, keys) })
				batch = make([]string, 0, deleteBatchSize)
			}
		}
	}
	if len(batch) > 0 {
		keys := batch
		eg.Go(func() error { return s3fs.deleteBatch(egCtx, keys) })
	}
	if err := eg.Wait(); err != nil {
		return s3fs.pathError("delete", prefix, err)
	}
	if listError != nil {
		return s3fs.pathError("delete", prefix, listError)
	}
	return nil
}

// NewS3FileSystem returns a file system over the given bucket.
// If maxEntries is -1, then folder listings are not limited.
func NewS3FileSystem(bucket string, client Client, maxEntries int) *S3FileSystem {
	return &S3FileSystem{
		bucket:     bucket,
		client:     client,
		maxEntries: maxEntries,
		roots:      map[string]struct{}{},
	}
}
