// Package awsconfig loads the AWS SDK configuration shared by the registrar and the ingest
// function.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// Configuration selects the region and, optionally, static credentials.
// Without AccessID and AccessKey the default credential chain is used.
type Configuration struct {
	Region    string
	AccessID  string
	AccessKey string
}

// Load returns an aws.Config for c
func Load(ctx context.Context, c Configuration) (aws.Config, error) {
	if c.Region == "" {
		return aws.Config{}, fmt.Errorf("AWS region must not be empty")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.Region),
	}
	if provider := c.credentialsProvider(); provider != nil {
		opts = append(opts, config.WithCredentialsProvider(provider))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("cannot load AWS configuration: %w", err)
	}
	logger.Default().Debugf("AWS configuration loaded for region %s", c.Region)
	return cfg, nil
}

func (c Configuration) credentialsProvider() aws.CredentialsProvider {
	if c.AccessID == "" || c.AccessKey == "" {
		return nil
	}
	return credentials.NewStaticCredentialsProvider(c.AccessID, c.AccessKey, "")
}
