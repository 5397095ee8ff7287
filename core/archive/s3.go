package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// Uploader is the part of manager.Uploader used by S3
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 is the implementation of the archive Driver for AWS S3
type S3 struct {
	uploader    Uploader
	bucket      string
	baseKeyName string
}

// NewS3 returns a new S3
func NewS3(awsConfig aws.Config, config S3Configuration) (*S3, error) {
	if config.AWSBucketName == "" {
		return nil, fmt.Errorf("AWSBucketName must not be empty")
	}
	logger.Default().Debugln("archive S3 enabled")
	return NewS3WithUploader(manager.NewUploader(s3.NewFromConfig(awsConfig)), config), nil
}

// NewS3WithUploader returns a new S3 using the given uploader
func NewS3WithUploader(uploader Uploader, config S3Configuration) *S3 {
	return &S3{uploader: uploader, bucket: config.AWSBucketName, baseKeyName: config.KeyPrefix}
}

// Store uploads data into a new key object
func (s S3) Store(ctx context.Context, key string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.baseKeyName + key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", s.baseKeyName+key, err)
	}
	logger.FromContext(ctx).Debugf("S3: stored key '%s'", s.baseKeyName+key)
	return nil
}
