// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package s3fstest provides an in-memory S3 client for tests.
package s3fstest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MemoryClient is an in-memory S3 client for a single bucket.
type MemoryClient struct {
	bucket  string
	mu      sync.Mutex
	objects map[string][]byte
	// counts calls to DeleteObjects
	deleteObjectsCalls int
	// records the ranges requested by GetObject
	ranges []string
}

func NewMemoryClient(bucket string) *MemoryClient {
	return &MemoryClient{
		bucket:  bucket,
		objects: map[string][]byte{},
	}
}

func (c *MemoryClient) checkBucket(bucket *string) error {
	if aws.ToString(bucket) != c.bucket {
		return &types.NoSuchBucket{Message: aws.String(aws.ToString(bucket))}
	}
	return nil
}

func (c *MemoryClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (c *MemoryClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: int64(len(data)),
		LastModified:  aws.Time(time.Now()),
	}, nil
}

func (c *MemoryClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	if r := aws.ToString(params.Range); len(r) > 0 {
		c.ranges = append(c.ranges, r)
		var start, end int
		if _, err := fmt.Sscanf(r, "bytes=%d-%d", &start, &end); err != nil {
			return nil, err
		}
		if end >= len(data) {
			end = len(data) - 1
		}
		data = data[start : end+1]
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(data))),
		ContentLength: int64(len(data)),
	}, nil
}

func (c *MemoryClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (c *MemoryClient) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	source, err := url.PathUnescape(aws.ToString(params.CopySource))
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(source, "/", 2)
	if len(parts) != 2 || parts[0] != c.bucket {
		return nil, &types.NoSuchBucket{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[parts[1]]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	c.objects[aws.ToString(params.Key)] = append([]byte{}, data...)
	return &s3.CopyObjectOutput{}, nil
}

func (c *MemoryClient) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (c *MemoryClient) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	if len(params.Delete.Objects) > 1000 {
		return nil, fmt.Errorf("too many objects: %d", len(params.Delete.Objects))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteObjectsCalls++
	for _, object := range params.Delete.Objects {
		delete(c.objects, aws.ToString(object.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (c *MemoryClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := c.checkBucket(params.Bucket); err != nil {
		return nil, err
	}
	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)

	c.mu.Lock()
	keys := make([]string, 0, len(c.objects))
	for key := range c.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sizes := map[string]int64{}
	for _, key := range keys {
		sizes[key] = int64(len(c.objects[key]))
	}
	c.mu.Unlock()
	sort.Strings(keys)

	// entries are either object keys or common prefixes ending in the delimiter
	entries := []string{}
	seen := map[string]bool{}
	for _, key := range keys {
		if len(delimiter) > 0 {
			if i := strings.Index(key[len(prefix):], delimiter); i >= 0 {
				commonPrefix := key[:len(prefix)+i+len(delimiter)]
				if !seen[commonPrefix] {
					seen[commonPrefix] = true
					entries = append(entries, commonPrefix)
				}
				continue
			}
		}
		entries = append(entries, key)
	}

	// continuation tokens are the last entry returned, so deletes between pages are safe
	start := 0
	if token := aws.ToString(params.ContinuationToken); len(token) > 0 {
		for start < len(entries) && entries[start] <= token {
			start++
		}
	}
	maxKeys := int(params.MaxKeys)
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	end := start + maxKeys
	if end > len(entries) {
		end = len(entries)
	}

	output := &s3.ListObjectsV2Output{}
	for _, entry := range entries[start:end] {
		if seen[entry] {
			output.CommonPrefixes = append(output.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(entry)})
			continue
		}
		output.Contents = append(output.Contents, types.Object{Key: aws.String(entry), Size: sizes[entry]})
	}
	output.KeyCount = int32(end - start)
	if end < len(entries) {
		output.IsTruncated = true
		output.NextContinuationToken = aws.String(entries[end-1])
	}
	return output, nil
}

// Set stores the object directly, bypassing PutObject.
func (c *MemoryClient) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = data
}

// Has returns true if the object exists.
func (c *MemoryClient) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.objects[key]
	return ok
}

// DeleteObjectsCalls returns the number of calls to DeleteObjects.
func (c *MemoryClient) DeleteObjectsCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteObjectsCalls
}

// Ranges returns the ranges requested through GetObject.
func (c *MemoryClient) Ranges() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.ranges...)
}
