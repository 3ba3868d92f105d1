// Package mirror copies cached tables to S3 so a fleet of recorders can share
// one bucket. Keys mirror the cache layout below a prefix.
package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultRetries = 3
	defaultTimeout = 30 * time.Second
	maxBackoff     = 2 * time.Second
)

// Config selects the bucket and how uploads are attempted.
type Config struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint overrides the S3 endpoint, for S3 compatible stores.
	Endpoint string
	// Retries is the number of attempts per file, defaulting to 3.
	Retries int
	// Timeout bounds each attempt, defaulting to 30s.
	Timeout time.Duration
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads cache files to one bucket.
type S3 struct {
	cfg     Config
	client  objectPutter
	backoff time.Duration
	log     *slog.Logger
}

// NewS3 loads the default AWS configuration (environment, shared files,
// instance role) and returns an uploader for cfg.Bucket.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("mirror: bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mirror: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Attempts are retried here, with backoff bounded by ctx.
		o.RetryMaxAttempts = 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3(cfg, client), nil
}

func newS3(cfg Config, client objectPutter) *S3 {
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &S3{cfg: cfg, client: client, backoff: 200 * time.Millisecond, log: slog.Default()}
}

// Key is the object key of the cache file at file under root.
func (m *S3) Key(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("mirror: %s is outside the cache at %s", file, root)
	}
	return path.Join(m.cfg.Prefix, filepath.ToSlash(rel)), nil
}

// Upload copies the cache file at file, which must be inside root, and
// returns its s3:// URL.
func (m *S3) Upload(ctx context.Context, root, file string) (string, error) {
	key, err := m.Key(root, file)
	if err != nil {
		return "", err
	}
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("mirror: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("mirror: %w", err)
	}

	backoff := m.backoff
	var lastErr error
	for attempt := 1; attempt <= m.cfg.Retries; attempt++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("mirror: rewind %s: %w", file, err)
		}
		if lastErr = m.put(ctx, key, f, info.Size()); lastErr == nil {
			url := "s3://" + m.cfg.Bucket + "/" + key
			m.log.DebugContext(ctx, "mirror: uploaded table", "url", url, "bytes", info.Size(), "attempt", attempt)
			return url, nil
		}
		m.log.WarnContext(ctx, "mirror: upload failed", "key", key, "attempt", attempt, "error", lastErr)
		if attempt == m.cfg.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
	return "", fmt.Errorf("mirror: upload %s after %d attempts: %w", key, m.cfg.Retries, lastErr)
}

func (m *S3) put(ctx context.Context, key string, body io.Reader, size int64) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	return err
}
