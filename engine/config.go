package engine

import (
	"context"
	"time"

	"github.com/abhissng/synapse/acl"
	"github.com/abhissng/synapse/adapters/aws"
	"github.com/abhissng/synapse/adapters/events"
	"github.com/abhissng/synapse/adapters/events/memory"
	"github.com/abhissng/synapse/adapters/events/nats"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/prometheus"
	"github.com/abhissng/synapse/adapters/redis"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/adapters/validator"
	"github.com/abhissng/synapse/adapters/vault"
	"github.com/abhissng/synapse/adapters/viper"
	"github.com/abhissng/synapse/auth"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/codec"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
)

// Config describes one endpoint and its collaborators.
type Config struct {
	Name           string        `mapstructure:"name" validate:"required"`
	Environment    string        `mapstructure:"environment"`
	Codec          string        `mapstructure:"codec" validate:"oneof=json msgpack yaml gob"`
	Compress       bool          `mapstructure:"compress"`
	ReplyPrefix    string        `mapstructure:"reply_prefix"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
	// Subjects is the access list; empty leaves the endpoint unrestricted.
	Subjects  []string          `mapstructure:"subjects"`
	Transport TransportConfig   `mapstructure:"transport"`
	Secrets   SecretStoreConfig `mapstructure:"secrets"`
	Auth      AuthConfig        `mapstructure:"auth"`
	Dedupe    DedupeConfig      `mapstructure:"dedupe"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       LogConfig         `mapstructure:"log"`
}

// TransportConfig selects and tunes the bus.
type TransportConfig struct {
	Provider       string        `mapstructure:"provider" validate:"oneof=nats memory"`
	URL            string        `mapstructure:"url" validate:"required_if=Provider nats"`
	Credentials    string        `mapstructure:"credentials"`
	Token          string        `mapstructure:"token"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait" validate:"gte=0"`
	CircuitBreaker bool          `mapstructure:"circuit_breaker"`
}

// SecretStoreConfig selects where signing and verification keys live.
// Provider "none" disables authentication.
type SecretStoreConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=memory infisical aws-secretsmanager aws-ssm redis none"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// ConfigPath, when set, resolves {{.KEY}} placeholders in the
	// configuration from the secret at this path.
	ConfigPath string          `mapstructure:"config_path"`
	Infisical  InfisicalConfig `mapstructure:"infisical"`
	AWS        aws.AWSConfig   `mapstructure:"aws"`
	KMSKeyID   string          `mapstructure:"kms_key_id"`
	Redis      redis.Config    `mapstructure:"redis"`
}

// InfisicalConfig holds the Infisical project coordinates.
type InfisicalConfig struct {
	SiteURL     string `mapstructure:"site_url"`
	ProjectID   string `mapstructure:"project_id"`
	Environment string `mapstructure:"environment"`
	BasePath    string `mapstructure:"base_path"`
}

// AuthConfig tunes service tokens.
type AuthConfig struct {
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gte=0"`
	Leeway        time.Duration `mapstructure:"leeway" validate:"gte=0"`
	PrivateKeyEnv string        `mapstructure:"private_key_env"`
	RequireToken  bool          `mapstructure:"require_token"`
}

// DedupeConfig bounds the inbound duplicate filter. Size 0 disables it.
type DedupeConfig struct {
	Size   int           `mapstructure:"size" validate:"gte=0"`
	Window time.Duration `mapstructure:"window" validate:"gte=0"`
}

// MetricsConfig enables Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Address   string `mapstructure:"address"`
}

// LogConfig tunes the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	// CallerDepth is how many trailing path segments of the caller to log.
	CallerDepth int `mapstructure:"caller_depth"`
}

// DefaultConfig returns the values used for keys a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Codec:          codec.JSON.String(),
		ReplyPrefix:    constant.DefaultReplyPrefix,
		RequestTimeout: constant.DefaultRequestTimeout,
		Transport: TransportConfig{
			Provider:      constant.MemoryProvider.String(),
			MaxReconnects: nats.DefaultMaxReconnects,
			ReconnectWait: nats.DefaultReconnectWait,
		},
		Secrets: SecretStoreConfig{
			Provider: constant.DisabledSecretStore.String(),
			Timeout:  constant.DefaultSecretStoreTimeout,
		},
		Auth: AuthConfig{
			TokenTTL:      constant.DefaultTokenTTL,
			Leeway:        constant.DefaultTokenLeeway,
			PrivateKeyEnv: constant.DefaultPrivateKeyEnv,
		},
		Dedupe: DedupeConfig{
			Size:   constant.DefaultDedupeSize,
			Window: constant.DefaultDedupeWindow,
		},
		Metrics: MetricsConfig{Namespace: "synapse"},
	}
}

// LoadConfig reads file over DefaultConfig and validates the result.
// Environment variables override keys, nested keys as SECRETS_PROVIDER.
func LoadConfig(file string) (*Config, error) {
	if err := viper.NewViperFromFile(file).InitialiseViper(); err != nil {
		return nil, blame.ConfigLoadError(err)
	}
	return decodeConfig()
}

func decodeConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := viper.UnmarshalConfig(cfg); err != nil {
		return nil, blame.ConfigLoadError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validator.NewValidator().Validate(c)
}

// NewEndpointFromConfig builds the logger, secret store, transport, codec,
// authenticator, access list and metrics described by cfg. The endpoint owns
// the transport and secret store and closes them on Close. opts are applied
// after the configured ones.
func NewEndpointFromConfig(ctx context.Context, cfg *Config, opts ...Option) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, blame.ConfigLoadError(err)
	}

	store, closeStore, err := NewSecretStore(ctx, cfg.Secrets, logger)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Endpoint, error) {
		if closeStore != nil {
			_ = closeStore()
		}
		return nil, err
	}

	if cfg.Secrets.ConfigPath != "" && store != nil {
		if err := viper.NewViperFromFile("").LoadDynamicConfig(ctx, store, types.SecretPath(cfg.Secrets.ConfigPath)); err != nil {
			return fail(blame.ConfigLoadError(err))
		}
		if cfg, err = decodeConfig(); err != nil {
			return fail(err)
		}
	}

	c, err := newCodec(cfg)
	if err != nil {
		return fail(err)
	}

	authenticator, err := auth.New(cfg.Name, store,
		auth.WithLogger(logger),
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithLeeway(cfg.Auth.Leeway),
		auth.WithPrivateKeyEnv(cfg.Auth.PrivateKeyEnv),
		auth.WithRequireToken(cfg.Auth.RequireToken),
	)
	if err != nil {
		return fail(err)
	}

	list := acl.New()
	if len(cfg.Subjects) > 0 {
		list.RestrictTo(cfg.Subjects...)
	}

	var metrics *prometheus.MetricsCollector
	if cfg.Metrics.Enabled {
		metrics = prometheus.NewMetricsCollector(
			prometheus.WithServiceName(cfg.Name),
			prometheus.WithNamespace(cfg.Metrics.Namespace),
			prometheus.WithRuntimeMetrics(),
		)
	}

	transport, err := NewTransport(cfg.Name, cfg.Transport, logger)
	if err != nil {
		return fail(err)
	}

	base := []Option{
		WithLogger(logger),
		WithCodec(c),
		WithAuthenticator(authenticator),
		WithAccessList(list),
		WithMetrics(metrics),
		WithReplyPrefix(cfg.ReplyPrefix),
		WithRequestTimeout(cfg.RequestTimeout),
		WithDedupe(cfg.Dedupe.Size, cfg.Dedupe.Window),
		withOwnedTransport(),
		withCloser(closeStore),
	}
	e, err := NewEndpoint(cfg.Name, transport, append(base, opts...)...)
	if err != nil {
		_ = transport.Close()
		return fail(err)
	}
	return e, nil
}

// Metrics returns the endpoint's collector, nil when metrics are disabled.
func (e *Endpoint) Metrics() *prometheus.MetricsCollector { return e.metrics }

// NewLogger builds the logger described by cfg.Log.
func NewLogger(cfg *Config) (*log.Log, error) {
	isProd := helpers.IsProdEnvironment()
	return log.NewLogger(log.NewLoggerConfig(isProd,
		log.WithServiceName(cfg.Name),
		log.WithEnvironment(cfg.Environment),
		log.WithLevel(log.ParseLevel(cfg.Log.Level, isProd)),
		log.WithLogFile(cfg.Log.File, 100, 3, 28),
		log.WithEncoderTailLength(cfg.Log.CallerDepth),
	))
}

// NewTransport connects the configured bus.
func NewTransport(name string, cfg TransportConfig, logger *log.Log) (events.Transport, error) {
	switch types.Provider(cfg.Provider) {
	case constant.MemoryProvider:
		return memory.New(memory.WithLogger(logger)), nil
	case constant.NATSProvider:
		opts := []nats.Option{
			nats.WithLogger(logger),
			nats.WithConnectionName(name),
			nats.WithReconnect(cfg.MaxReconnects, cfg.ReconnectWait),
			nats.WithCredentials(cfg.Credentials),
			nats.WithToken(cfg.Token),
		}
		if cfg.CircuitBreaker {
			opts = append(opts, nats.WithCircuitBreaker())
		}
		return nats.NewNATSManager(cfg.URL, opts...)
	default:
		return nil, blame.UnsupportedProviderError(types.Provider(cfg.Provider))
	}
}

// NewSecretStore builds the configured secret store. The closer is nil when
// the store holds no connection. Provider "none" returns a nil store, which
// disables authentication.
func NewSecretStore(ctx context.Context, cfg SecretStoreConfig, logger *log.Log) (secrets.Store, func() error, error) {
	switch types.Provider(cfg.Provider) {
	case constant.DisabledSecretStore:
		return nil, nil, nil
	case constant.MemorySecretStore:
		return secrets.NewMemoryStore(), nil, nil
	case constant.InfisicalSecretStore:
		v, err := vault.NewVault(ctx,
			vault.WithLogger(logger),
			vault.WithSiteURL(cfg.Infisical.SiteURL),
			vault.WithProjectID(cfg.Infisical.ProjectID),
			vault.WithEnv(cfg.Infisical.Environment),
			vault.WithBasePath(cfg.Infisical.BasePath),
			vault.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil
	case constant.AWSSecretsManagerStore, constant.AWSParameterStore:
		manager, err := aws.NewAWSWrapper(ctx, cfg.AWS)
		if err != nil {
			return nil, nil, blame.SecretStoreError(cfg.Provider, err)
		}
		storeOpts := []aws.StoreOption{aws.WithPrefix(cfg.Prefix), aws.WithKMSKey(cfg.KMSKeyID), aws.WithLogger(logger)}
		if types.Provider(cfg.Provider) == constant.AWSParameterStore {
			return manager.ParameterStore(storeOpts...), nil, nil
		}
		return manager.SecretsManagerStore(storeOpts...), nil, nil
	case constant.RedisSecretStore:
		redisCfg := cfg.Redis
		if redisCfg.KeyPrefix == "" {
			redisCfg.KeyPrefix = cfg.Prefix
		}
		manager, err := redis.NewRedisWrapper(ctx, redisCfg)
		if err != nil {
			return nil, nil, blame.SecretStoreError(cfg.Provider, err)
		}
		return manager, manager.Close, nil
	default:
		return nil, nil, blame.UnsupportedProviderError(types.Provider(cfg.Provider))
	}
}

func newCodec(cfg *Config) (codec.Codec, error) {
	name := cfg.Codec
	if cfg.Compress {
		name += "+" + codec.Gzip.String()
	}
	return codec.New(types.CodecType(name))
}

// withCloser runs fn after the transport is closed.
func withCloser(fn func() error) Option {
	return func(e *Endpoint) {
		if fn != nil {
			e.closers = append(e.closers, fn)
		}
	}
}
