// Package dynamostore keeps event streams and publishers in Amazon DynamoDB.
//
// Messages live in one table keyed by stream_id (hash) and message_id
// (range). Each item carries the message position and the same compressed
// document the file backend writes, so both backends share one codec.
package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kapivara/eventhub/codec"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/exp/slog"
)

// Config is the DynamoDB connection and table configuration.
type Config struct {
	Region string

	// Endpoint overrides the service endpoint, for DynamoDB Local.
	Endpoint string `envconfig:"DYNAMODB_ENDPOINT"`

	AccessID  string `envconfig:"ACCESS_KEY_ID"`
	SecretKey string `envconfig:"SECRET_ACCESS_KEY"`

	Table          string `envconfig:"TABLE" default:"event_messages"`
	PublisherTable string `envconfig:"PUBLISHER_TABLE" default:"publishers"`
}

// LoadConfig reads the configuration from environment variables named
// <prefix>_REGION, <prefix>_DYNAMODB_ENDPOINT and so on.
func LoadConfig(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	if c.Table == "" || c.PublisherTable == "" {
		return Config{}, fmt.Errorf("table names must not be empty")
	}
	return c, nil
}

// NewClient returns a DynamoDB client for the configuration. Settings left
// empty fall back to the default AWS configuration chain.
func NewClient(ctx context.Context, c Config) (*dynamodb.Client, error) {
	var options []func(*config.LoadOptions) error

	if c.Region != "" {
		options = append(options, config.WithRegion(c.Region))
	}

	if c.Endpoint != "" {
		options = append(
			options,
			config.WithEndpointResolverWithOptions(
				aws.EndpointResolverWithOptionsFunc(
					func(service, region string, _ ...any) (aws.Endpoint, error) {
						return aws.Endpoint{URL: c.Endpoint}, nil
					},
				),
			),
		)
	}

	if c.AccessID != "" {
		options = append(
			options,
			config.WithCredentialsProvider(
				credentials.StaticCredentialsProvider{
					Value: aws.Credentials{
						AccessKeyID:     c.AccessID,
						SecretAccessKey: c.SecretKey,
					},
				},
			),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(cfg), nil
}

// Open creates both repositories on a client built from the configuration.
func Open(ctx context.Context, c Config, logger *slog.Logger) (*Repository, *PublisherRepository, error) {
	client, err := NewClient(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	serializer := codec.NewJSONSerializer()

	return NewRepository(c.Table, client, serializer, logger),
		NewPublisherRepository(c.PublisherTable, client, serializer, logger),
		nil
}
