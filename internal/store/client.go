// Package store provides the key-value table adapter: a uniform interface
// over one DynamoDB table with primary-key lookup, secondary-index query,
// and filtered full-table scan. One client is constructed at process start
// and shared; the adapter holds no other mutable state, so all operations
// are safe to call concurrently.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewClient builds the DynamoDB client. A non-empty endpoint selects a local
// emulator (DynamoDB Local) with static dummy credentials; otherwise the
// default AWS credential chain is used.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	if endpoint != "" {
		cfg := aws.Config{
			Credentials: credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			Region:      region,
		}
		return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("store: loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}
