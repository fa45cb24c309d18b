package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"gecko_rack/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "photos/"

// S3Store keeps images in an S3 compatible bucket
type S3Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
	compressor Compressor
	now        func() time.Time
}

// NewS3Store builds a client from static credentials when given, the default
// credential chain otherwise.
func NewS3Store(ctx context.Context, cfg *config.Config, c Compressor) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	base := cfg.S3PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return &S3Store{
		client:     client,
		bucket:     cfg.S3Bucket,
		publicBase: strings.TrimRight(base, "/"),
		compressor: c,
		now:        time.Now,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, data []byte) (string, error) {
	out, err := s.compressor.Compress(data)
	if err != nil {
		return "", err
	}
	key := s3KeyPrefix + NewObjectName(s.now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(out),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicBase + "/" + key, nil
}

func (s *S3Store) Remove(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) keyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, s.publicBase+"/")
	if !ok || !strings.HasPrefix(key, s3KeyPrefix) || strings.Contains(key, "..") {
		return "", fmt.Errorf("not a stored image url: %q", url)
	}
	return key, nil
}
