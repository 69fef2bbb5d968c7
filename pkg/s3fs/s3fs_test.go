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
	"io"
	iofs "io/fs"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deptofdefense/netstorage/pkg/fs"
	"github.com/deptofdefense/netstorage/pkg/s3fs/s3fstest"
)

var _ Client = (*s3fstest.MemoryClient)(nil)

const testBucket = "netstorage"

func newTestRoot(t *testing.T) (*s3fstest.MemoryClient, *S3FileSystem, *S3Folder) {
	t.Helper()
	client := s3fstest.NewMemoryClient(testBucket)
	s3fs := NewS3FileSystem(testBucket, client, -1)
	root, err := s3fs.Root(context.Background(), "data/local")
	require.NoError(t, err)
	return client, s3fs, root
}

func createFile(t *testing.T, folder fs.Folder, name string, text string) fs.File {
	t.Helper()
	ctx := context.Background()
	f, err := folder.CreateFile(ctx, name, fs.CreateFailIfExists)
	require.NoError(t, err)
	require.NoError(t, f.WriteAllText(ctx, text))
	return f
}

func TestParsePath(t *testing.T) {
	bucket, key, err := ParsePath("s3://bucket/a/b/../c.txt")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "a/c.txt", key)

	bucket, key, err = ParsePath("s3://bucket")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Empty(t, key)

	_, _, err = ParsePath("s3:///key")
	assert.Error(t, err)
	_, _, err = ParsePath("/tmp/key")
	assert.Error(t, err)

	assert.Equal(t, "a/b", CleanKey("/a//b/"))
	assert.Equal(t, "", CleanKey("/"))
	assert.Equal(t, "b", CleanKey("../b"))
}

func TestIsNotExist(t *testing.T) {
	s3fs := NewS3FileSystem(testBucket, s3fstest.NewMemoryClient(testBucket), -1)
	assert.True(t, s3fs.IsNotExist(&types.NotFound{}))
	assert.True(t, s3fs.IsNotExist(fmt.Errorf("wrapped: %w", &types.NoSuchKey{})))
	assert.False(t, s3fs.IsNotExist(fmt.Errorf("other")))
	assert.True(t, fs.IsNotExist(s3fs.pathError("stat", "a", &types.NotFound{})))
}

func TestRoot(t *testing.T) {
	ctx := context.Background()
	client, s3fs, root := newTestRoot(t)
	assert.Equal(t, "local", root.Name())
	assert.Equal(t, "data/local", root.Prefix())
	assert.Equal(t, "s3://netstorage/data/local", root.FullPath())
	assert.True(t, client.Has("data/local/"))

	_, err := s3fs.Root(ctx, "data/local")
	require.NoError(t, err, "an existing root is reused")

	_, err = NewS3FileSystem("missing", client, -1).Root(ctx, "x")
	assert.True(t, fs.IsNotExist(err))
}

func TestWriteAndRead(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTestRoot(t)
	f := createFile(t, root, "a.txt", "hello")
	assert.Equal(t, "a.txt", f.Name())
	assert.Equal(t, "s3://netstorage/data/local/a.txt", f.FullPath())

	text, err := f.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	require.NoError(t, f.WriteAllBytes(ctx, []byte{1, 2, 3}))
	data, err := f.ReadAllBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, f.WriteAllLines(ctx, []string{"x", "y"}))
	text, err = f.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", text)

	files, err := root.GetFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1, "the folder marker is not a file")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	client, _, root := newTestRoot(t)
	f := createFile(t, root, "a.txt", "hello")

	s, err := f.Open(ctx, fs.Read)
	require.NoError(t, err)
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.NotEmpty(t, client.Ranges(), "reads use ranged requests")
	_, err = s.Seek(1, io.SeekStart)
	require.NoError(t, err)
	p := make([]byte, 3)
	n, err := s.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ell", string(p[:n]))
	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, fs.ErrAccessDenied)
	require.NoError(t, s.Close())

	s, err = f.Open(ctx, fs.ReadWrite)
	require.NoError(t, err)
	_, err = s.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	_, err = s.Write([]byte(" world"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.Write([]byte("!"))
	assert.ErrorIs(t, err, iofs.ErrClosed, "closed streams reject writes")

	text, err := f.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	s, err = f.Open(ctx, fs.Write)
	require.NoError(t, err)
	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrAccessDenied)
	require.NoError(t, s.Close())

	require.NoError(t, f.Delete(ctx))
	_, err = f.Open(ctx, fs.Read)
	assert.True(t, fs.IsNotExist(err))
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTestRoot(t)
	a := createFile(t, root, "a.txt", "a")
	createFile(t, root, "b.txt", "b")

	err := a.Rename(ctx, "b.txt", fs.FailIfExists)
	assert.True(t, fs.IsExist(err))

	err = a.Rename(ctx, "sub/b.txt", fs.FailIfExists)
	assert.ErrorIs(t, err, fs.ErrInvalidName)

	require.NoError(t, a.Rename(ctx, "a.txt", fs.FailIfExists))

	require.NoError(t, a.Rename(ctx, "b.txt", fs.GenerateUniqueName))
	assert.Equal(t, "b (2).txt", a.Name())

	require.NoError(t, a.Rename(ctx, "b.txt", fs.ReplaceExisting))
	assert.Equal(t, "b.txt", a.Name())
	text, err := a.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	result, err := root.CheckExists(ctx, "b (2).txt")
	require.NoError(t, err)
	assert.Equal(t, fs.NotFound, result)
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTestRoot(t)
	sub, err := root.CreateFolder(ctx, "sub dir", fs.CreateFailIfExists)
	require.NoError(t, err)
	a := createFile(t, root, "a b.txt", "a")
	createFile(t, sub, "a b.txt", "old")

	err = a.Move(ctx, "s3://other/a.txt", fs.ReplaceExisting)
	assert.ErrorIs(t, err, fs.ErrUnsupported)

	// local paths are never treated as keys
	for _, p := range []string{"/data/local/b.txt", "file:///data/local/b.txt"} {
		err = a.Move(ctx, p, fs.ReplaceExisting)
		assert.ErrorIs(t, err, fs.ErrUnsupported, p)
	}
	assert.Equal(t, "s3://netstorage/data/local/a b.txt", a.FullPath())

	err = a.Move(ctx, sub.FullPath()+"/a b.txt", fs.FailIfExists)
	assert.True(t, fs.IsExist(err))

	require.NoError(t, a.Move(ctx, sub.FullPath()+"/a b.txt", fs.ReplaceExisting))
	assert.Equal(t, "s3://netstorage/data/local/sub dir/a b.txt", a.FullPath())

	text, err := a.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	err = a.Move(ctx, sub.FullPath(), fs.ReplaceExisting)
	assert.True(t, fs.IsExist(err), "a file must not replace a folder")

	require.NoError(t, a.Move(ctx, "data/elsewhere/a.txt", fs.FailIfExists))
	assert.Equal(t, "s3://netstorage/data/elsewhere/a.txt", a.FullPath())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTestRoot(t)
	a := createFile(t, root, "a.txt", "a")
	require.NoError(t, a.Delete(ctx))
	assert.True(t, fs.IsNotExist(a.Delete(ctx)))
}

func TestCreateFileCollisions(t *testing.T) {
	ctx := context.Background()
	_, _, root := newTestRoot(t)
	createFile(t, root, "a.txt", "a")

	_, err := root.CreateFile(ctx, "a.txt", fs.CreateFailIfExists)
	assert.True(t, fs.IsExist(err))

	f, err := root.CreateFile(ctx, "a.txt", fs.CreateOpenIfExists)
	require.NoError(t, err)
	text, err := f.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	f, err = root.CreateFile(ctx, "a.txt", fs.CreateGenerateUniqueName)
	require.NoError(t, err)
	assert.Equal(t, "a (2).txt", f.Name())

	f, err = root.CreateFile(ctx, "a.txt", fs.CreateReplaceExisting)
	require.NoError(t, err)
	text, err = f.ReadAllText(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = root.CreateFile(ctx, "..", fs.CreateFailIfExists)
	assert.ErrorIs(t, err, fs.ErrInvalidName)
}

func TestFolders(t *testing.T) {
	ctx := context.Background()
	_, s3fs, root := newTestRoot(t)

	b, err := root.CreateFolder(ctx, "b", fs.CreateFailIfExists)
	require.NoError(t, err)
	_, err = root.CreateFolder(ctx, "a", fs.CreateFailIfExists)
	require.NoError(t, err)
	createFile(t, root, "c.txt", "c")
	createFile(t, b, "inner.txt", "inner")

	_, err = root.CreateFolder(ctx, "b", fs.CreateFailIfExists)
	assert.True(t, fs.IsExist(err))

	again, err := root.CreateFolder(ctx, "b", fs.CreateOpenIfExists)
	require.NoError(t, err)
	files, err := again.GetFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	replaced, err := root.CreateFolder(ctx, "b", fs.CreateReplaceExisting)
	require.NoError(t, err)
	files, err = replaced.GetFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	unique, err := root.CreateFolder(ctx, "b", fs.CreateGenerateUniqueName)
	require.NoError(t, err)
	assert.Equal(t, "b (2)", unique.Name())

	_, err = root.CreateFolder(ctx, "c.txt", fs.CreateReplaceExisting)
	assert.True(t, fs.IsExist(err))

	folders, err := root.GetFolders(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, folder := range folders {
		names = append(names, folder.Name())
	}
	assert.Equal(t, []string{"a", "b", "b (2)"}, names)

	result, err := root.CheckExists(ctx, "c.txt")
	require.NoError(t, err)
	assert.Equal(t, fs.FileExists, result)
	result, err = root.CheckExists(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, fs.FolderExists, result)

	_, err = root.GetFile(ctx, "a")
	assert.True(t, fs.IsNotExist(err))
	_, err = root.GetFolder(ctx, "missing")
	assert.True(t, fs.IsNotExist(err))

	folder, err := s3fs.GetFolder(ctx, "data/local/a")
	require.NoError(t, err)
	require.NoError(t, folder.Delete(ctx))
	result, err = root.CheckExists(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, fs.NotFound, result)
	assert.True(t, fs.IsNotExist(folder.Delete(ctx)))

	assert.ErrorIs(t, root.Delete(ctx), fs.ErrRootFolder)
	bucketRoot, err := s3fs.GetFolder(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, testBucket, bucketRoot.Name())
	assert.ErrorIs(t, bucketRoot.Delete(ctx), fs.ErrRootFolder)
}

func TestImplicitFolder(t *testing.T) {
	ctx := context.Background()
	client, s3fs, root := newTestRoot(t)
	// objects written by other tools have no folder marker
	client.Set("data/local/implicit/x.txt", []byte("x"))

	result, err := root.CheckExists(ctx, "implicit")
	require.NoError(t, err)
	assert.Equal(t, fs.FolderExists, result)

	folder, err := s3fs.GetFolder(ctx, "data/local/implicit")
	require.NoError(t, err)
	files, err := folder.GetFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "x.txt", files[0].Name())
}

func TestDeletePrefixBatches(t *testing.T) {
	ctx := context.Background()
	client, _, root := newTestRoot(t)
	big, err := root.CreateFolder(ctx, "big", fs.CreateFailIfExists)
	require.NoError(t, err)
	for i := 0; i < 2499; i++ {
		client.Set(fmt.Sprintf("data/local/big/%04d", i), []byte{})
	}
	createFile(t, root, "bigger.txt", "kept")

	require.NoError(t, big.Delete(ctx))
	assert.Equal(t, 3, client.DeleteObjectsCalls())

	result, err := root.CheckExists(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, fs.NotFound, result)
	result, err = root.CheckExists(ctx, "bigger.txt")
	require.NoError(t, err)
	assert.Equal(t, fs.FileExists, result, "sibling keys sharing the prefix are kept")
}

func TestReadDirMaxEntries(t *testing.T) {
	ctx := context.Background()
	client := s3fstest.NewMemoryClient(testBucket)
	s3fs := NewS3FileSystem(testBucket, client, 3)
	root, err := s3fs.Root(ctx, "")
	require.NoError(t, err)
	for _, name := range []string{"e", "d", "c"} {
		createFile(t, root, name, name)
	}
	for _, name := range []string{"b", "a"} {
		_, err := root.CreateFolder(ctx, name, fs.CreateFailIfExists)
		require.NoError(t, err)
	}
	files, folders, err := s3fs.ReadDir(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, folders)
	assert.Equal(t, []string{"c"}, files)
}

func TestNestedRoots(t *testing.T) {
	ctx := context.Background()
	client, s3fs, local := newTestRoot(t)
	roaming, err := s3fs.Root(ctx, "data/local/Roaming")
	require.NoError(t, err)
	createFile(t, roaming, "keep.txt", "keep")

	_, err = local.CreateFolder(ctx, "Roaming", fs.CreateReplaceExisting)
	assert.ErrorIs(t, err, fs.ErrRootFolder)

	data, err := s3fs.GetFolder(ctx, "data")
	require.NoError(t, err)
	assert.ErrorIs(t, data.Delete(ctx), fs.ErrRootFolder)
	assert.ErrorIs(t, s3fs.DeletePrefix(ctx, "data"), fs.ErrRootFolder)
	assert.True(t, client.Has("data/local/Roaming/keep.txt"))

	sibling, err := local.CreateFolder(ctx, "Roaming2", fs.CreateFailIfExists)
	require.NoError(t, err)
	require.NoError(t, sibling.Delete(ctx))
}
