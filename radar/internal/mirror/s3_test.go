package mirror

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	failN   int
	calls   int
	objects map[string][]byte
}

func (b *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.failN {
		io.Copy(io.Discard, in.Body)
		return nil, errors.New("slow down")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != aws.ToInt64(in.ContentLength) {
		return nil, errors.New("content length mismatch")
	}
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func writeCacheFile(t *testing.T, root, rel, data string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestUpload(t *testing.T) {
	root := t.TempDir()
	file := writeCacheFile(t, root, "feed/1700000000_22_23_113_114.parquet", "PAR1")

	bucket := &fakeBucket{failN: 1}
	m := newS3(Config{Bucket: "tables", Prefix: "radar/v1"}, bucket)
	m.backoff = time.Millisecond

	url, err := m.Upload(context.Background(), root, file)
	require.NoError(t, err)
	assert.Equal(t, "s3://tables/radar/v1/feed/1700000000_22_23_113_114.parquet", url)
	assert.Equal(t, 2, bucket.calls)
	assert.Equal(t, "PAR1", string(bucket.objects["tables/radar/v1/feed/1700000000_22_23_113_114.parquet"]),
		"a retried upload sends the whole file again")
}

func TestUploadGivesUp(t *testing.T) {
	root := t.TempDir()
	file := writeCacheFile(t, root, "top_flights/1700000000_10.jsonl.gz", "x")

	bucket := &fakeBucket{failN: 10}
	m := newS3(Config{Bucket: "tables", Retries: 2}, bucket)
	m.backoff = time.Millisecond

	_, err := m.Upload(context.Background(), root, file)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, bucket.calls)
}

func TestUploadCancelled(t *testing.T) {
	root := t.TempDir()
	file := writeCacheFile(t, root, "feed/a.parquet", "x")

	m := newS3(Config{Bucket: "tables"}, &fakeBucket{failN: 10})
	m.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Upload(ctx, root, file)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKey(t *testing.T) {
	m := newS3(Config{Bucket: "tables"}, &fakeBucket{})
	key, err := m.Key("/cache", "/cache/flight_list/reg/B-HUJ.parquet")
	require.NoError(t, err)
	assert.Equal(t, "flight_list/reg/B-HUJ.parquet", key)

	_, err = m.Key("/cache", "/elsewhere/feed/a.parquet")
	assert.Error(t, err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), Config{})
	assert.Error(t, err)
}
