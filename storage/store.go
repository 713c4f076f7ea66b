package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"arxiv-radar/config"
)

// S3Store bundles the client with its bucket so callers deal in keys only.
type S3Store struct {
	Client *s3.Client
	Config *config.Config
}

// NewS3Store creates the blob store used by the ingestion pipeline.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	return &S3Store{Client: client, Config: cfg}, nil
}

// Upload stores a blob under key and returns its public link.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte) (string, error) {
	return UploadFile(ctx, s.Client, s.Config.S3Bucket, key, data, s.Config)
}

// Delete removes a blob under key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	return DeleteFile(ctx, s.Client, s.Config.S3Bucket, key)
}
