package source

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client defines the S3 operation the source needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the track file from an S3 object.
type S3Source struct {
	client S3Client
	bucket string
	key    string
}

// NewS3Source creates an S3Source for bucket/key.
func NewS3Source(client S3Client, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s/%s: %w", s.bucket, s.key, err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string { return "s3://" + s.bucket + "/" + s.key }
