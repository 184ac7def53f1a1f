package testutils

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kelseyhightower/envconfig"
)

// DynamoDBConfig is an object that we fill from AWSCONFIG_* environment
// variables.
type DynamoDBConfig struct {
	Region    string `default:"us-east-1"`
	Endpoint  string `envconfig:"DYNAMODB_ENDPOINT"`
	AccessID  string `envconfig:"ACCESS_KEY_ID" default:"local"`
	SecretKey string `envconfig:"SECRET_ACCESS_KEY" default:"local"`
}

// DynamoDBClient returns a client for the endpoint named by
// AWSCONFIG_DYNAMODB_ENDPOINT. The test is skipped when it is not set.
func DynamoDBClient(t testing.TB) *dynamodb.Client {
	t.Helper()

	var conf DynamoDBConfig
	if err := envconfig.Process("AWSCONFIG", &conf); err != nil {
		t.Fatal(err)
	}

	if conf.Endpoint == "" {
		t.Skip("AWSCONFIG_DYNAMODB_ENDPOINT is not set")
	}

	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(conf.Region),
		config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, _ ...any) (aws.Endpoint, error) {
					return aws.Endpoint{URL: conf.Endpoint}, nil
				},
			),
		),
		config.WithCredentialsProvider(
			credentials.StaticCredentialsProvider{
				Value: aws.Credentials{
					AccessKeyID:     conf.AccessID,
					SecretAccessKey: conf.SecretKey,
				},
			},
		),
		config.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	return dynamodb.NewFromConfig(cfg)
}
