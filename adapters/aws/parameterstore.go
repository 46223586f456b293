package aws

import (
	"context"
	"path"

	"github.com/abhissng/synapse/adapters/log"
	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type parameterStoreAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// ParameterStore maps a path to a parameter hierarchy, one SecureString per field.
type ParameterStore struct {
	client parameterStoreAPI
	opts   storeOptions
}

var _ secrets.Store = (*ParameterStore)(nil)

func NewParameterStore(client parameterStoreAPI, opts ...StoreOption) *ParameterStore {
	return &ParameterStore{client: client, opts: newStoreOptions(opts)}
}

func (p *ParameterStore) hierarchy(secretPath types.SecretPath) string {
	return "/" + p.opts.name(secretPath)
}

func (p *ParameterStore) GetSecrets(ctx context.Context, secretPath types.SecretPath) (map[string]string, error) {
	fields := map[string]string{}
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(p.hierarchy(secretPath)),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(false),
	}

	for {
		out, err := p.client.GetParametersByPath(ctx, input)
		if err != nil {
			p.opts.log.Error("Failed to get parameters from Parameter Store", log.String("path", *input.Path), log.Err(err))
			return nil, blame.SecretStoreError(secretPath.String(), err)
		}
		for _, param := range out.Parameters {
			if param.Name == nil || param.Value == nil {
				continue
			}
			fields[path.Base(*param.Name)] = *param.Value
		}
		if out.NextToken == nil || *out.NextToken == "" {
			return fields, nil
		}
		input.NextToken = out.NextToken
	}
}

func (p *ParameterStore) SetSecrets(ctx context.Context, secretPath types.SecretPath, fields map[string]string) error {
	base := p.hierarchy(secretPath)
	for field, value := range fields {
		input := &ssm.PutParameterInput{
			Name:      aws.String(base + "/" + field),
			Value:     aws.String(value),
			Type:      ssmTypes.ParameterTypeSecureString,
			Overwrite: aws.Bool(true),
		}
		if p.opts.kmsKey != "" {
			input.KeyId = aws.String(p.opts.kmsKey)
		}
		if _, err := p.client.PutParameter(ctx, input); err != nil {
			p.opts.log.Error("Failed to put parameter", log.String("name", *input.Name), log.Err(err))
			return blame.SecretStoreError(secretPath.String(), err)
		}
	}
	return nil
}
