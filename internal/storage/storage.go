// Package storage uploads produced GIFs to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/backmassage/gifbatch/internal/config"
	"github.com/backmassage/gifbatch/internal/pipeline"
)

const contentType = "image/gif"

// Uploader puts files into one bucket under a key prefix.
type Uploader struct {
	client *miniogo.Client
	bucket string
	prefix string
}

var _ pipeline.Publisher = (*Uploader)(nil)

// NewUploader builds a client for cfg. No network call is made until
// EnsureBucket or Publish.
func NewUploader(cfg config.Upload) (*Uploader, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.bucket, err)
		}
	}
	return nil
}

// Publish uploads localPath and returns its object key.
func (u *Uploader) Publish(ctx context.Context, localPath string) (string, error) {
	key := ObjectKey(u.prefix, localPath)
	_, err := u.client.FPutObject(ctx, u.bucket, key, localPath, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// ObjectKey joins prefix and the base name of localPath with '/'. Leading
// and trailing slashes of prefix are ignored.
func ObjectKey(prefix, localPath string) string {
	base := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}
