// Package awsconfig loads a shared aws.Config for the S3 and SQS adapters.
// Credentials come from the default chain (env vars, shared config files,
// instance metadata).
package awsconfig

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Load resolves an aws.Config for the given region.
func Load(ctx context.Context, region string, logger *slog.Logger) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("AWS config loaded",
		slog.String("region", region),
	)

	return cfg, nil
}
