package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/codec"
	"github.com/abhissng/synapse/utils/types"
)

type ping struct {
	Op    string            `json:"op" yaml:"op"`
	Seq   int               `json:"seq" yaml:"seq"`
	Tags  []string          `json:"tags" yaml:"tags"`
	Attrs map[string]string `json:"attrs" yaml:"attrs"`
}

func samplePing() ping {
	return ping{Op: "ping", Seq: 7, Tags: []string{"a", "b"}, Attrs: map[string]string{"k": "v"}}
}

func TestRoundTrip(t *testing.T) {
	names := []types.CodecType{
		codec.JSON, codec.MessagePack, codec.YAML, codec.Gob,
		"json+gzip", "msgpack+gzip",
	}
	for _, name := range names {
		t.Run(name.String(), func(t *testing.T) {
			c, err := codec.New(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(samplePing())
			require.NoError(t, err)

			var got ping
			require.NoError(t, c.Unmarshal(data, &got))
			assert.Equal(t, samplePing(), got)
		})
	}
}

func TestMalformedBytesFail(t *testing.T) {
	cases := map[types.CodecType][]byte{
		codec.JSON:        []byte("{not json"),
		codec.MessagePack: {},
		codec.YAML:        {},
		codec.Gob:         []byte("garbage"),
		"json+gzip":       []byte("not gzip"),
	}
	for name, data := range cases {
		t.Run(name.String(), func(t *testing.T) {
			c, err := codec.New(name)
			require.NoError(t, err)

			var got ping
			err = c.Unmarshal(data, &got)
			require.Error(t, err)
			assert.True(t, blame.HasCode(err, blame.ErrorUnmarshalFailed))
		})
	}
}

func TestUnknownCodec(t *testing.T) {
	_, err := codec.New("protobuf")
	require.Error(t, err)
	assert.True(t, blame.HasCode(err, blame.ErrorUnknownCodec))
}

func TestRegister(t *testing.T) {
	assert.Error(t, codec.Register("", func() codec.Codec { return codec.Default() }))
	assert.Error(t, codec.Register("a+b", func() codec.Codec { return codec.Default() }))
	assert.Error(t, codec.Register("custom", nil))

	require.NoError(t, codec.Register("custom", func() codec.Codec { return codec.Default() }))
	c, err := codec.New("custom")
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, c.Name())
}

func TestGenericHelpers(t *testing.T) {
	data, err := codec.Encode(samplePing(), codec.MessagePack)
	require.NoError(t, err)

	got, err := codec.Decode[ping](data, codec.MessagePack)
	require.NoError(t, err)
	assert.Equal(t, samplePing(), got)
}

func TestConvertGenericPayload(t *testing.T) {
	c := codec.Default()
	data, err := c.Marshal(samplePing())
	require.NoError(t, err)

	var generic any
	require.NoError(t, c.Unmarshal(data, &generic))

	var typed ping
	require.NoError(t, codec.Convert(c, generic, &typed))
	assert.Equal(t, samplePing(), typed)
}

func TestCompressionIsIdempotent(t *testing.T) {
	c := codec.WithCompression(codec.WithCompression(codec.Default()))
	assert.Equal(t, types.CodecType("json+gzip"), c.Name())
}
