// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pdiddy/docmark/pkg/types"
)

const markdownContentType = "text/markdown; charset=utf-8"

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads files to s3://Bucket/Prefix/<name>. The local file is
// left in place.
type S3Sink struct {
	bucket   string
	prefix   string
	uploader uploader
}

// NewS3Sink builds an uploader from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies. A
// custom Endpoint (MinIO and similar) switches to path-style addressing.
func NewS3Sink(ctx context.Context, cfg types.S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket not set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &S3Sink{
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		uploader: manager.NewUploader(client),
	}, nil
}

// Key returns the object key for a local file.
func (s *S3Sink) Key(localPath string) string {
	return path.Join(s.prefix, filepath.Base(localPath))
}

// Deliver implements Sink and returns the s3:// URI of the object.
func (s *S3Sink) Deliver(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	key := s.Key(localPath)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(markdownContentType),
	}); err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
