package vault

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	infisical "github.com/infisical/go-sdk"
	"github.com/infisical/go-sdk/packages/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	mu      sync.Mutex
	folders map[string]map[string]string
	listErr error
	creates int
	updates int
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{folders: make(map[string]map[string]string)}
}

func (f *fakeSecrets) List(o infisical.ListSecretsOptions) ([]models.Secret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	folder, ok := f.folders[o.SecretPath]
	if !ok {
		return nil, errors.New("Folder not found")
	}
	out := make([]models.Secret, 0, len(folder))
	for k, v := range folder {
		out = append(out, models.Secret{SecretKey: k, SecretValue: v})
	}
	return out, nil
}

func (f *fakeSecrets) Create(o infisical.CreateSecretOptions) (models.Secret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.folders[o.SecretPath] == nil {
		f.folders[o.SecretPath] = map[string]string{}
	}
	f.folders[o.SecretPath][o.SecretKey] = o.SecretValue
	return models.Secret{SecretKey: o.SecretKey, SecretValue: o.SecretValue}, nil
}

func (f *fakeSecrets) Update(o infisical.UpdateSecretOptions) (models.Secret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.folders[o.SecretPath][o.SecretKey] = o.NewSecretValue
	return models.Secret{SecretKey: o.SecretKey, SecretValue: o.NewSecretValue}, nil
}

func newTestVault(t *testing.T, api secretsAPI) *Vault {
	t.Helper()
	v, err := NewVault(context.Background(),
		withSecretsAPI(api),
		WithProjectID("proj"),
		WithEnv("dev"),
		WithBasePath("/synapse"),
		WithLogger(log.NewNopLogger()),
	)
	require.NoError(t, err)
	return v
}

func TestVaultMissingFolderIsEmpty(t *testing.T) {
	v := newTestVault(t, newFakeSecrets())
	fields, err := v.GetSecrets(context.Background(), "publickey/jwt-service/orders")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestVaultCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	api := newFakeSecrets()
	v := newTestVault(t, api)

	require.NoError(t, v.SetSecrets(ctx, "publickey/jwt-service/orders", map[string]string{"publicKey": "a"}))
	require.NoError(t, v.SetSecrets(ctx, "publickey/jwt-service/orders", map[string]string{"publicKey": "b"}))

	assert.Equal(t, 1, api.creates)
	assert.Equal(t, 1, api.updates)
	assert.Equal(t, "b", api.folders["/synapse/publickey/jwt-service/orders"]["publicKey"])

	fields, err := v.GetSecrets(ctx, "/publickey/jwt-service/orders/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"publicKey": "b"}, fields)
}

func TestVaultListFailureIsSecretStoreError(t *testing.T) {
	api := newFakeSecrets()
	api.listErr = errors.New("connection refused")
	v := newTestVault(t, api)

	_, err := v.GetSecrets(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, blame.HasCode(err, blame.ErrorSecretStoreFailure))
}

func TestWithTimeoutGivesUp(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, err := withTimeout(context.Background(), constant.DefaultSecretStoreTimeout/1000, func() (int, error) {
		<-block
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
