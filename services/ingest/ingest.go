package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/joeshaw/envdecode"
	"github.com/relabs-tech/vibecloud/core/archive"
	"github.com/relabs-tech/vibecloud/core/awsconfig"
	"github.com/relabs-tech/vibecloud/core/logger"
	"github.com/relabs-tech/vibecloud/iot/telemetry"
)

// Service holds the configuration for the ingest function
type Service struct {
	Region        string `env:"TIMESTREAM_REGION,default=us-east-1" description:"the AWS region of the Timestream database"`
	Database      string `env:"TIMESTREAM_DATABASE,default=VibrationDB" description:"the Timestream database"`
	Table         string `env:"TIMESTREAM_TABLE,default=Telemetry" description:"the Timestream table"`
	ArchiveDriver string `env:"ARCHIVE_DRIVER" description:"raw event archive: empty, 's3' or 'local'"`
	ArchiveBucket string `env:"ARCHIVE_BUCKET" description:"the S3 bucket of the s3 archive"`
	ArchivePrefix string `env:"ARCHIVE_PREFIX" description:"the key prefix of the s3 archive"`
	ArchivePath   string `env:"ARCHIVE_PATH" description:"the base folder of the local archive"`
	LambdaHandler string `env:"LAMBDA_HANDLER" description:"'sqs' for SQS triggers, anything else for direct IoT rule invocations"`
	LogLevel      string `env:"LOG_LEVEL,default=info" description:"the logrus log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}
	logger.InitLogger(logger.ParseLevel(service.LogLevel))

	ctx := context.Background()
	cfg, err := awsconfig.Load(ctx, awsconfig.Configuration{Region: service.Region})
	if err != nil {
		panic(err)
	}

	handler, err := newHandler(service, cfg, timestreamwrite.NewFromConfig(cfg))
	if err != nil {
		panic(err)
	}

	if service.LambdaHandler == "sqs" {
		logger.Default().Info("starting SQS telemetry handler")
		lambda.Start(handler.HandleSQS)
		return
	}
	logger.Default().Info("starting telemetry handler")
	lambda.Start(handler.Handle)
}

func newHandler(s *Service, cfg aws.Config, client telemetry.TimestreamAPI) (*telemetry.Handler, error) {
	drv, err := archive.New(s.archiveConfiguration(), cfg)
	if err != nil {
		return nil, err
	}
	return telemetry.NewHandler(&telemetry.Builder{
		Writer:  telemetry.NewTimestreamWriter(client, s.Database, s.Table),
		Archive: drv,
	}), nil
}

func (s *Service) archiveConfiguration() archive.Configuration {
	config := archive.Configuration{DriverType: archive.DriverType(s.ArchiveDriver)}
	switch config.DriverType {
	case archive.DriverTypeAWSS3:
		config.S3Configuration = &archive.S3Configuration{
			AWSBucketName: s.ArchiveBucket,
			KeyPrefix:     s.ArchivePrefix,
		}
	case archive.DriverTypeLocal:
		config.LocalConfiguration = &archive.LocalConfiguration{BasePath: s.ArchivePath}
	}
	return config
}
