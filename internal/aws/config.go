package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const defaultRegion = "us-east-1"

// Options selects the region and an optional endpoint override (e.g. LocalStack).
type Options struct {
	Region           string
	EndpointOverride string
}

// LoadAWSConfig resolves the SDK config. With an endpoint override and no
// credentials in the environment, LocalStack's static test credentials are used.
func LoadAWSConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if opts.EndpointOverride != "" {
		if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
			cfg.Credentials = sdkaws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("test", "test", ""))
		}
	}

	return cfg, nil
}
