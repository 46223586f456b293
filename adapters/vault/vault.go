// Package vault is a secrets.Store backed by Infisical. A secret path maps to
// a folder, and each field maps to one secret inside it.
package vault

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	infisical "github.com/infisical/go-sdk"
	"github.com/infisical/go-sdk/packages/models"
)

const defaultSiteURL = "https://app.infisical.com"

// secretsAPI is the part of the Infisical SDK the store relies on.
type secretsAPI interface {
	List(options infisical.ListSecretsOptions) ([]models.Secret, error)
	Create(options infisical.CreateSecretOptions) (models.Secret, error)
	Update(options infisical.UpdateSecretOptions) (models.Secret, error)
}

// Vault struct holds the configuration for the Vault client
type Vault struct {
	secrets   secretsAPI
	env       string
	projectID string
	basePath  string
	siteURL   string
	timeout   time.Duration
	log       *log.Log
}

var _ secrets.Store = (*Vault)(nil)

// NewVault creates a vault store. Unless a client is injected it logs in
// with universal auth, reading INFISICAL_UNIVERSAL_AUTH_CLIENT_ID and
// INFISICAL_UNIVERSAL_AUTH_CLIENT_SECRET from the environment.
func NewVault(ctx context.Context, opts ...Option) (*Vault, error) {
	v := &Vault{
		basePath: "/",
		siteURL:  defaultSiteURL,
		timeout:  constant.DefaultSecretStoreTimeout,
		env:      helpers.GetEnvironmentSlug(helpers.GetEnvironment()),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	if v.secrets != nil {
		return v, nil
	}

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          v.siteURL,
		AutoTokenRefresh: true,
	})
	if _, err := client.Auth().UniversalAuthLogin("", ""); err != nil {
		v.log.Error("Authentication failed with the vault", log.Err(err))
		return nil, blame.SecretStoreError(v.basePath, err)
	}
	v.secrets = client.Secrets()
	return v, nil
}

func (v *Vault) folder(p types.SecretPath) string {
	return path.Join("/", v.basePath, secrets.Normalize(p).String())
}

// GetSecrets lists the folder for path. A missing folder is treated as empty.
func (v *Vault) GetSecrets(ctx context.Context, p types.SecretPath) (map[string]string, error) {
	list, err := withTimeout(ctx, v.timeout, func() ([]models.Secret, error) {
		return v.secrets.List(infisical.ListSecretsOptions{
			ProjectID:   v.projectID,
			Environment: v.env,
			SecretPath:  v.folder(p),
		})
	})
	if err != nil {
		if isNotFound(err) {
			return map[string]string{}, nil
		}
		v.log.Error("Error listing secrets from vault", log.String("path", p.String()), log.Err(err))
		return nil, blame.SecretStoreError(p.String(), err)
	}

	fields := make(map[string]string, len(list))
	for _, s := range list {
		fields[s.SecretKey] = s.SecretValue
	}
	return fields, nil
}

// SetSecrets updates existing keys and creates the rest.
func (v *Vault) SetSecrets(ctx context.Context, p types.SecretPath, fields map[string]string) error {
	current, err := v.GetSecrets(ctx, p)
	if err != nil {
		return err
	}

	folder := v.folder(p)
	for key, value := range fields {
		_, err := withTimeout(ctx, v.timeout, func() (models.Secret, error) {
			if _, ok := current[key]; ok {
				return v.secrets.Update(infisical.UpdateSecretOptions{
					SecretKey:      key,
					ProjectID:      v.projectID,
					Environment:    v.env,
					SecretPath:     folder,
					NewSecretValue: value,
				})
			}
			return v.secrets.Create(infisical.CreateSecretOptions{
				SecretKey:   key,
				SecretValue: value,
				ProjectID:   v.projectID,
				Environment: v.env,
				SecretPath:  folder,
			})
		})
		if err != nil {
			v.log.Error("Error writing secret to vault", log.String("path", p.String()), log.String("key", key), log.Err(err))
			return blame.SecretStoreError(p.String(), err)
		}
	}
	return nil
}

// withTimeout runs a blocking SDK call, giving up when ctx or timeout expire.
// The SDK takes no context, so an abandoned call finishes in the background.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		val, err := fn()
		done <- outcome{val, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
