package constant

import (
	"time"

	"github.com/abhissng/synapse/utils/types"
)

// These are general constant for config file
const (
	Service     = "Service"
	Environment = "Environment"
	RunMode     = "RunMode"
)

// Endpoint defaults
const (
	DefaultReplyPrefix    = "_reply"
	DefaultRequestTimeout = 30 * time.Second
	DefaultTokenTTL       = 5 * time.Minute
	DefaultTokenLeeway    = 5 * time.Second
	DefaultDedupeSize     = 4096
	DefaultDedupeWindow   = 2 * time.Minute
)

// GraceFul Shutdown Constants
const (
	ServiceDefaultGracefulTime time.Duration = 5 * time.Second
)

// Transport providers
const (
	NATSProvider   types.Provider = "nats"
	MemoryProvider types.Provider = "memory"
)

// Secret store providers
const (
	MemorySecretStore      types.Provider = "memory"
	InfisicalSecretStore   types.Provider = "infisical"
	AWSSecretsManagerStore types.Provider = "aws-secretsmanager"
	AWSParameterStore      types.Provider = "aws-ssm"
	RedisSecretStore       types.Provider = "redis"
	DisabledSecretStore    types.Provider = "none"
)

// Token authenticator defaults
const (
	DefaultPrivateKeyEnv      = "SERVICE_PRIVATE_KEY"
	DefaultSecretStoreTimeout = 5 * time.Second
)
