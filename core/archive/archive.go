package archive

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// archive package stores raw telemetry payloads next to the time series store, so that
// events can be replayed. There are currently two possible backends: a local file
// system and AWS S3

// Driver defines the interface for the archive service
type Driver interface {
	Store(ctx context.Context, key string, data []byte) error
}

// DriverType represents the different type of archive Drivers
type DriverType string

// DriverTypeLocal is the local filesystem implementation of the archive service
const DriverTypeLocal DriverType = "local"

// DriverTypeAWSS3 is the AWS S3 implementation of the archive service
const DriverTypeAWSS3 DriverType = "s3"

// None is used when there is no archive
const None DriverType = ""

// Configuration contains the configuration for the archive service
type Configuration struct {
	DriverType         DriverType
	LocalConfiguration *LocalConfiguration
	S3Configuration    *S3Configuration
}

// LocalConfiguration contains the configuration for the local filesystem archive
type LocalConfiguration struct {
	BasePath string
}

// S3Configuration contains the configuration for the S3 archive
type S3Configuration struct {
	AWSBucketName string
	KeyPrefix     string
}

// New returns the driver selected by config, or nil if config.DriverType is None.
func New(config Configuration, awsConfig aws.Config) (Driver, error) {
	switch config.DriverType {
	case None:
		logger.Default().Info("archive not in use")
		return nil, nil
	case DriverTypeLocal:
		if config.LocalConfiguration == nil {
			return nil, fmt.Errorf("archive expecting a configuration for local archive, but got nothing")
		}
		return NewLocalFilesystem(*config.LocalConfiguration)
	case DriverTypeAWSS3:
		if config.S3Configuration == nil {
			return nil, fmt.Errorf("archive expecting a configuration for S3 archive, but got nothing")
		}
		return NewS3(awsConfig, *config.S3Configuration)
	}
	return nil, fmt.Errorf("unknown archive driver type '%s'", config.DriverType)
}
