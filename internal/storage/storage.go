// Package storage wraps the S3-compatible object store used for category
// and product images.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // base url objects are served from
}

type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Upload stores the object under <folder>/<unix-ms>-<sanitized-filename>
// and returns the object key plus the public URL.
func (s *Store) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	key := fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), SanitizeFilename(filename))

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", err
	}

	return key, s.URLFor(key), nil
}

func (s *Store) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *Store) URLFor(objectKey string) string {
	return s.publicURL + "/" + objectKey
}

// KeyFromURL reverses URLFor; empty result means the url is not ours.
func (s *Store) KeyFromURL(url string) string {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// SanitizeFilename keeps letters, digits, dots and hyphens; everything
// else becomes an underscore.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if out == "" {
		return "file"
	}
	return out
}
