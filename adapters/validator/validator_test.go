package validator

import (
	"testing"

	"github.com/abhissng/synapse/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=nats memory"`
	URL      string `mapstructure:"url" validate:"required_if=Provider nats"`
}

type endpointConfig struct {
	Name      string          `mapstructure:"name" validate:"required"`
	Transport transportConfig `mapstructure:"transport"`
	Dedupe    int             `mapstructure:"dedupe_size" validate:"gte=0"`
}

func TestValidateStructUsesConfigKeys(t *testing.T) {
	v := NewValidator()

	fields := v.ValidateStruct(endpointConfig{
		Transport: transportConfig{Provider: "nats"},
		Dedupe:    -1,
	})

	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "url is required", fields["transport.url"])
	assert.Equal(t, "dedupe_size must be greater than or equal to 0", fields["dedupe_size"])
}

func TestValidateOneOf(t *testing.T) {
	fields := NewValidator().ValidateStruct(endpointConfig{
		Name:      "svc",
		Transport: transportConfig{Provider: "kafka"},
	})
	assert.Equal(t, "provider must be one of [nats memory]", fields["transport.provider"])
}

func TestValidateReturnsBlame(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(endpointConfig{Name: "svc", Transport: transportConfig{Provider: "memory"}}))

	err := v.Validate(endpointConfig{Transport: transportConfig{Provider: "memory"}})
	require.Error(t, err)
	assert.True(t, blame.HasCode(err, blame.ErrorConfigValidationFailed))
}

func TestValidateField(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.ValidateField("nats://localhost:4222", "url"))
	assert.Equal(t, "value must be a valid URL", v.ValidateField("not a url", "url"))
}
