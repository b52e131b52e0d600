package backup

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Target ships archives to an S3 (or S3-compatible) bucket under prefix.
type S3Target struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Target wraps client for bucket, joining prefix onto every key.
func NewS3Target(client *s3.Client, bucket, prefix string) *S3Target {
	return &S3Target{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (t *S3Target) key(name string) string {
	if t.prefix == "" {
		return name
	}
	return t.prefix + "/" + name
}

func (t *S3Target) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(key)),
		Body:   r,
	})
	return err
}

func (t *S3Target) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(key)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
