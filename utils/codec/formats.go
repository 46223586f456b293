package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"io"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/types"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var errEmptyPayload = errors.New("empty payload")

type jsonCodec struct{}

func (jsonCodec) Name() types.CodecType { return JSON }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, blame.MarshalError(JSON, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return blame.UnmarshalError(JSON, err)
	}
	return nil
}

// msgpackCodec honours json struct tags so payload types need a single set of tags.
type msgpackCodec struct{}

func (msgpackCodec) Name() types.CodecType { return MessagePack }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, blame.MarshalError(MessagePack, err)
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return blame.UnmarshalError(MessagePack, errEmptyPayload)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return blame.UnmarshalError(MessagePack, err)
	}
	return nil
}

type yamlCodec struct{}

func (yamlCodec) Name() types.CodecType { return YAML }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, blame.MarshalError(YAML, err)
	}
	return data, nil
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	// yaml.Unmarshal accepts empty input silently; the decoder reports io.EOF instead.
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyPayload
		}
		return blame.UnmarshalError(YAML, err)
	}
	return nil
}

// gobCodec needs concrete types behind interface values to be registered with gob.Register.
type gobCodec struct{}

func (gobCodec) Name() types.CodecType { return Gob }

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, blame.MarshalError(Gob, err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return blame.UnmarshalError(Gob, err)
	}
	return nil
}
