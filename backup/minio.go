package backup

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinioTarget ships archives to a MinIO (or other S3-compatible) bucket
// under prefix, using the minio-go client directly rather than the
// aws-sdk-go-v2 surface S3Target uses.
type MinioTarget struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioTarget wraps client for bucket, joining prefix onto every key.
func NewMinioTarget(client *minio.Client, bucket, prefix string) *MinioTarget {
	return &MinioTarget{client: client, bucket: bucket, prefix: prefix}
}

func (t *MinioTarget) key(name string) string { return path.Join(t.prefix, name) }

func (t *MinioTarget) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := t.client.PutObject(ctx, t.bucket, t.key(key), r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

func (t *MinioTarget) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := t.client.GetObject(ctx, t.bucket, t.key(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
