package aws

import (
	"context"
	"errors"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/codec"
	"github.com/abhissng/synapse/utils/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smTypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// SecretsManagerStore stores all fields of a path as one JSON document.
type SecretsManagerStore struct {
	client secretsManagerAPI
	opts   storeOptions
}

var _ secrets.Store = (*SecretsManagerStore)(nil)

func NewSecretsManagerStore(client secretsManagerAPI, opts ...StoreOption) *SecretsManagerStore {
	return &SecretsManagerStore{client: client, opts: newStoreOptions(opts)}
}

func (s *SecretsManagerStore) GetSecrets(ctx context.Context, path types.SecretPath) (map[string]string, error) {
	fields, _, err := s.get(ctx, path)
	return fields, err
}

func (s *SecretsManagerStore) get(ctx context.Context, path types.SecretPath) (map[string]string, bool, error) {
	name := s.opts.name(path)
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *smTypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return map[string]string{}, false, nil
		}
		s.opts.log.Error("Failed to get secret from Secrets Manager", log.String("secret", name), log.Err(err))
		return nil, false, blame.SecretStoreError(path.String(), err)
	}

	if result.SecretString == nil || *result.SecretString == "" {
		return map[string]string{}, true, nil
	}
	fields, err := codec.Decode[map[string]string]([]byte(*result.SecretString), codec.JSON)
	if err != nil {
		return nil, true, blame.SecretStoreError(path.String(), err)
	}
	return fields, true, nil
}

// SetSecrets merges fields into the existing document, creating it if absent.
func (s *SecretsManagerStore) SetSecrets(ctx context.Context, path types.SecretPath, fields map[string]string) error {
	current, exists, err := s.get(ctx, path)
	if err != nil {
		return err
	}

	body, err := codec.Encode(secrets.Merge(current, fields), codec.JSON)
	if err != nil {
		return err
	}

	name := s.opts.name(path)
	if exists {
		_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(name),
			SecretString: aws.String(string(body)),
		})
	} else {
		input := &secretsmanager.CreateSecretInput{
			Name:         aws.String(name),
			SecretString: aws.String(string(body)),
		}
		if s.opts.kmsKey != "" {
			input.KmsKeyId = aws.String(s.opts.kmsKey)
		}
		_, err = s.client.CreateSecret(ctx, input)
	}
	if err != nil {
		s.opts.log.Error("Failed to write secret to Secrets Manager", log.String("secret", name), log.Err(err))
		return blame.SecretStoreError(path.String(), err)
	}
	return nil
}
