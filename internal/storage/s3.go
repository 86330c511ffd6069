package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options selects where avatars land in the bucket and how they are addressed.
type S3Options struct {
	Bucket    string
	KeyPrefix string
	// PublicBaseURL, when set, replaces the S3 object location in returned
	// URLs (for example a CDN in front of the bucket).
	PublicBaseURL string
}

// S3Service stores avatars in Amazon S3 (or compatible APIs).
type S3Service struct {
	uploader *manager.Uploader
	opts     S3Options
}

func NewS3Service(client *s3.Client, opts S3Options) *S3Service {
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &S3Service{
		uploader: manager.NewUploader(client),
		opts:     opts,
	}
}

func (s *S3Service) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (string, error) {
	if s.opts.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", ErrInvalidKey
	}

	objectKey := key
	if s.opts.KeyPrefix != "" {
		objectKey = path.Join(s.opts.KeyPrefix, key)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}

	if s.opts.PublicBaseURL != "" {
		return s.opts.PublicBaseURL + "/" + objectKey, nil
	}
	return out.Location, nil
}

var _ Service = (*S3Service)(nil)
