// Package auth signs outbound messages with the service's own identity and
// verifies the identity claimed by inbound ones.
package auth

import (
	"context"
	"crypto/ed25519"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/abhissng/synapse/adapters/jwt"
	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/cryptography"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"github.com/go-viper/mapstructure/v2"
)

// keyRecord is the field layout of both key paths in the store.
type keyRecord struct {
	PrivateKey string `mapstructure:"privateKey"`
	PublicKey  string `mapstructure:"publicKey"`
}

// Authenticator issues and checks service identity tokens. A nil store puts
// it in disabled mode: Sign returns "" and Verify accepts everything.
type Authenticator struct {
	name          string
	store         secrets.Store
	log           *log.Log
	ttl           time.Duration
	leeway        time.Duration
	privateKeyEnv string
	requireToken  bool
	now           func() time.Time
	validator     *jwt.Validator

	mu  sync.Mutex
	key ed25519.PrivateKey
	kid string
}

// New returns an Authenticator for the service called name.
func New(name string, store secrets.Store, opts ...Option) (*Authenticator, error) {
	if helpers.IsEmpty(name) {
		return nil, blame.SigningKeyMissingError(name, errors.New("service name is empty"))
	}

	a := &Authenticator{
		name:          name,
		store:         store,
		ttl:           constant.DefaultTokenTTL,
		leeway:        constant.DefaultTokenLeeway,
		privateKeyEnv: constant.DefaultPrivateKeyEnv,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	a.validator = jwt.NewValidator(a.leeway, a.now)

	if !a.Enabled() {
		a.log.Warn("Service authentication disabled: no secret store configured",
			log.String("service", name))
	}
	return a, nil
}

// Enabled reports whether tokens are issued and checked.
func (a *Authenticator) Enabled() bool {
	return a != nil && a.store != nil
}

// Name is the identity this Authenticator signs as.
func (a *Authenticator) Name() string {
	return a.name
}

// Sign issues a fresh token for this service.
func (a *Authenticator) Sign(ctx context.Context) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	key, kid, err := a.signingKey(ctx)
	if err != nil {
		return "", err
	}

	token, err := jwt.GenerateJWT(jwt.NewJWTClaims(a.name, a.ttl, a.now()), key, kid)
	if err != nil {
		return "", blame.CreateTokenError(err)
	}
	return token, nil
}

// signingKey loads the private key once. Failures are not cached so a later
// call can succeed once the store is reachable.
func (a *Authenticator) signingKey(ctx context.Context) (ed25519.PrivateKey, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.key != nil {
		return a.key, a.kid, nil
	}

	path := secrets.PrivateKeyPath(a.name)
	record, err := a.readRecord(ctx, path)
	if err != nil {
		return nil, "", err
	}

	provisioned := false
	pemKey := record.PrivateKey
	if helpers.IsEmpty(pemKey) {
		pemKey = os.Getenv(a.privateKeyEnv)
		if helpers.IsEmpty(pemKey) {
			return nil, "", blame.SigningKeyMissingError(a.name, nil)
		}
		provisioned = true
	}

	key, err := cryptography.ParseEd25519PrivateKey([]byte(pemKey))
	if err != nil {
		return nil, "", blame.SigningKeyMalformedError(a.name, err)
	}

	if provisioned {
		if err := a.provision(ctx, key); err != nil {
			return nil, "", err
		}
	}

	a.key = key
	a.kid = cryptography.Fingerprint(key.Public().(ed25519.PublicKey))
	a.log.Info("Service signing key loaded", log.String("service", a.name), log.String("kid", a.kid))
	return a.key, a.kid, nil
}

// provision writes an environment-supplied key into the store and publishes
// its public half when none is published yet.
func (a *Authenticator) provision(ctx context.Context, key ed25519.PrivateKey) error {
	privatePEM, err := cryptography.EncodeEd25519PrivateKey(key)
	if err != nil {
		return blame.SigningKeyMalformedError(a.name, err)
	}
	if err := a.store.SetSecrets(ctx, secrets.PrivateKeyPath(a.name), map[string]string{
		constant.PrivateKeyField: privatePEM,
	}); err != nil {
		return err
	}

	pubPath := secrets.PublicKeyPath(a.name)
	record, err := a.readRecord(ctx, pubPath)
	if err != nil {
		return err
	}
	if !helpers.IsEmpty(record.PublicKey) {
		return nil
	}

	publicPEM, err := cryptography.PublicKeyPEM(key)
	if err != nil {
		return blame.SigningKeyMalformedError(a.name, err)
	}
	if err := a.store.SetSecrets(ctx, pubPath, map[string]string{
		constant.PublicKeyField: publicPEM,
	}); err != nil {
		return err
	}
	a.log.Info("Provisioned service keys from environment", log.String("service", a.name))
	return nil
}

// Verify checks token and returns the verified signer. Disabled mode, and an
// empty token unless tokens are required, yield "" and no error.
func (a *Authenticator) Verify(ctx context.Context, token string) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	if helpers.IsEmpty(token) {
		if a.requireToken {
			return "", blame.MissingAuthCredential()
		}
		return "", nil
	}

	signer, err := jwt.ParseSubject(token)
	if err != nil {
		if errors.Is(err, jwt.ErrSubjectMissing) {
			return "", blame.TokenSubjectMissingError(err)
		}
		return "", blame.InvalidServiceTokenError()
	}
	return a.verifyAs(ctx, token, signer)
}

// verifyAs validates token with the key published under signer and requires
// the token's subject to match signer.
func (a *Authenticator) verifyAs(ctx context.Context, token, signer string) (string, error) {
	record, err := a.readRecord(ctx, secrets.PublicKeyPath(signer))
	if err != nil {
		return "", err
	}
	if helpers.IsEmpty(record.PublicKey) {
		return "", blame.VerificationKeyMissingError(signer, nil)
	}

	pub, err := cryptography.ParseEd25519PublicKey([]byte(record.PublicKey))
	if err != nil {
		return "", blame.VerificationKeyMissingError(signer, err)
	}

	claims, err := a.validator.ValidateJWT(token, pub)
	if err != nil {
		a.log.Debug("Service token rejected", log.String("signer", signer), log.Err(err))
		return "", blame.InvalidServiceTokenError()
	}
	if claims.Subject != signer {
		a.log.Warn("Service token subject does not match signing key",
			log.String("signer", signer), log.String("subject", claims.Subject))
		return "", blame.InvalidServiceTokenError()
	}
	return claims.Subject, nil
}

func (a *Authenticator) readRecord(ctx context.Context, path types.SecretPath) (keyRecord, error) {
	var record keyRecord
	fields, err := a.store.GetSecrets(ctx, path)
	if err != nil {
		return record, err
	}
	if err := mapstructure.Decode(fields, &record); err != nil {
		return record, blame.SecretStoreError(path.String(), err)
	}
	return record, nil
}
