package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/vidtube/auth-service/internal/config"
)

// Store is the boundary to the external media service. The auth service only
// ever uploads; serving and transcoding live elsewhere.
type Store interface {
	Upload(ctx context.Context, folder, contentType string, body io.Reader) (string, error)
}

// ObjectPutter is the part of the S3 client the store uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements Store on an S3-compatible bucket
type s3Store struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

// NewS3Store creates a media store backed by the configured bucket
func NewS3Store(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &s3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// NewS3StoreWithClient wires a store around an existing client. Used by tests.
func NewS3StoreWithClient(client ObjectPutter, bucket, publicURL string) Store {
	return &s3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload puts the object under a date-partitioned random key and returns the
// public URL to store on the user record.
func (s *s3Store) Upload(ctx context.Context, folder, contentType string, body io.Reader) (string, error) {
	key := storageKey(folder)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

func storageKey(folder string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", folder, d.Year(), d.Month(), d.Day(), uuid.New())
}
