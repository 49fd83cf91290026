// ABOUTME: S3-compatible export sink (AWS S3 or MinIO)
// ABOUTME: Uploads export files under an optional key prefix in a single bucket
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the bucket settings. Credentials come from the default
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; set for MinIO or other S3-compatible stores
	Prefix    string
	PathStyle bool
	Overwrite bool
}

// S3Sink uploads exports to S3.
type S3Sink struct {
	client    *s3.Client
	bucket    string
	prefix    string
	overwrite bool
}

// NewS3Sink builds a sink from cfg using the default AWS credential chain.
func NewS3Sink(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)

	return &S3Sink{
		client:    s3.NewFromConfig(awsCfg, opts...),
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		overwrite: cfg.Overwrite,
	}, nil
}

func (s *S3Sink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Sink) Save(ctx context.Context, name string, content []byte, contentType string) (string, error) {
	key := s.key(name)
	if !s.overwrite {
		free, err := s.freeKey(ctx, name)
		if err != nil {
			return "", err
		}
		key = free
	}

	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// freeKey returns the first numbered variant of name with no object behind it.
func (s *S3Sink) freeKey(ctx context.Context, name string) (string, error) {
	for n := 0; n < maxCopies; n++ {
		key := s.key(numbered(name, n))
		if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
			return key, nil
		}
	}
	return "", fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key(name), ErrExists)
}
