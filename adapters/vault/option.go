package vault

import (
	"time"

	"github.com/abhissng/synapse/adapters/log"
)

// Option is a function that configures the Vault
type Option func(*Vault)

// WithEnv sets the environment slug the secrets live in.
func WithEnv(env string) Option {
	return func(v *Vault) {
		if env != "" {
			v.env = env
		}
	}
}

// WithProjectID sets the project ID
func WithProjectID(projectID string) Option {
	return func(v *Vault) {
		v.projectID = projectID
	}
}

// WithBasePath sets the folder every secret path is resolved under.
func WithBasePath(path string) Option {
	return func(v *Vault) {
		if path != "" {
			v.basePath = path
		}
	}
}

// WithTimeout bounds each round trip to the vault.
func WithTimeout(timeout time.Duration) Option {
	return func(v *Vault) {
		if timeout > 0 {
			v.timeout = timeout
		}
	}
}

// WithSiteURL sets the siteURL
func WithSiteURL(url string) Option {
	return func(v *Vault) {
		if url != "" {
			v.siteURL = url
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Log) Option {
	return func(v *Vault) {
		v.log = logger
	}
}

// withSecretsAPI swaps the SDK client, used by tests.
func withSecretsAPI(api secretsAPI) Option {
	return func(v *Vault) {
		v.secrets = api
	}
}
