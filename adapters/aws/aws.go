// Package aws provides secret stores backed by AWS Secrets Manager and SSM
// Parameter Store.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const defaultRegion = "ap-south-1"

// AWSConfig holds the configuration for AWS services
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	Endpoint        string `mapstructure:"endpoint"`
}

func NewAwsConfig() *AWSConfig {
	return &AWSConfig{
		Region: defaultRegion,
	}
}

// AWSManager owns the service clients the secret stores are built from.
type AWSManager struct {
	config         AWSConfig
	secretsManager *secretsmanager.Client
	awsSSMClient   *ssm.Client
}

// Option is a function that configures the AWSManager
type Option func(*AWSConfig)

// WithRegion sets the AWS region
func WithRegion(region string) Option {
	return func(c *AWSConfig) {
		c.Region = region
	}
}

// WithEndpoint points every client at a custom endpoint, e.g. localstack.
func WithEndpoint(endpoint string) Option {
	return func(c *AWSConfig) {
		c.Endpoint = endpoint
	}
}

// NewAWSWrapper creates a new instance of AWSManager with the provided options
func NewAWSWrapper(ctx context.Context, cfg AWSConfig, opts ...Option) (*AWSManager, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	awsConfig, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSManager{
		config: cfg,
		secretsManager: secretsmanager.NewFromConfig(awsConfig, func(o *secretsmanager.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		}),
		awsSSMClient: ssm.NewFromConfig(awsConfig, func(o *ssm.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		}),
	}, nil
}

// loadAWSConfig creates the AWS SDK configuration
func loadAWSConfig(ctx context.Context, cfg AWSConfig) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// GetConfig returns the AWS config
func (a *AWSManager) GetConfig() AWSConfig {
	return a.config
}

// SecretsManagerStore returns a store keeping one JSON secret per path.
func (a *AWSManager) SecretsManagerStore(opts ...StoreOption) *SecretsManagerStore {
	return NewSecretsManagerStore(a.secretsManager, opts...)
}

// ParameterStore returns a store keeping one SecureString parameter per field.
func (a *AWSManager) ParameterStore(opts ...StoreOption) *ParameterStore {
	return NewParameterStore(a.awsSSMClient, opts...)
}
