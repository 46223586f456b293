package codec

import (
	"errors"
	"strings"
	"sync"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/types"
)

// Codec turns payloads into the bytes exchanged on the bus and back.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	Name() types.CodecType
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Factory constructs a codec.
type Factory func() Codec

var (
	registryMu sync.RWMutex
	registry   = map[types.CodecType]Factory{
		JSON:        func() Codec { return jsonCodec{} },
		MessagePack: func() Codec { return msgpackCodec{} },
		YAML:        func() Codec { return yamlCodec{} },
		Gob:         func() Codec { return gobCodec{} },
	}
)

// Register adds or replaces a codec factory under name.
func Register(name types.CodecType, factory Factory) error {
	if strings.TrimSpace(name.String()) == "" {
		return errors.New("codec name must not be empty")
	}
	if strings.Contains(name.String(), compressionSeparator) {
		return errors.New("codec name must not contain " + compressionSeparator)
	}
	if factory == nil {
		return errors.New("codec factory must not be nil")
	}
	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
	return nil
}

// New returns the codec registered under name. A "+gzip" suffix wraps it with compression.
func New(name types.CodecType) (Codec, error) {
	base, compressed := strings.CutSuffix(name.String(), compressionSeparator+Gzip.String())

	registryMu.RLock()
	factory, ok := registry[types.CodecType(strings.ToLower(base))]
	registryMu.RUnlock()
	if !ok {
		return nil, blame.UnknownCodecError(name)
	}

	c := factory()
	if compressed {
		return WithCompression(c), nil
	}
	return c, nil
}

// Default returns the JSON codec.
func Default() Codec {
	return jsonCodec{}
}

// Encode serializes data based on the codec type.
func Encode[T any](data T, codecType types.CodecType) ([]byte, error) {
	c, err := New(codecType)
	if err != nil {
		return nil, err
	}
	return c.Marshal(data)
}

// Decode deserializes data based on the codec type.
func Decode[T any](data []byte, codecType types.CodecType) (T, error) {
	var result T
	c, err := New(codecType)
	if err != nil {
		return result, err
	}
	err = c.Unmarshal(data, &result)
	return result, err
}

// Convert re-encodes an already decoded value into target using c, so a
// generic payload (maps, slices) can be read into a concrete type.
func Convert(c Codec, value any, target any) error {
	if c == nil {
		c = Default()
	}
	data, err := c.Marshal(value)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, target)
}
