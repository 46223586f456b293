package codec

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
)

type compressedCodec struct {
	inner Codec
	level int
}

// WithCompression gzips the output of inner. Wrapping an already compressed codec returns it unchanged.
func WithCompression(inner Codec) Codec {
	if c, ok := inner.(compressedCodec); ok {
		return c
	}
	return compressedCodec{inner: inner, level: gzip.DefaultCompression}
}

func (c compressedCodec) Name() types.CodecType {
	return c.inner.Name() + compressionSeparator + Gzip
}

func (c compressedCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, blame.MarshalError(c.Name(), err)
	}
	if _, err := gz.Write(raw); err != nil {
		_ = gz.Close()
		return nil, blame.MarshalError(c.Name(), err)
	}
	if err := gz.Close(); err != nil {
		return nil, blame.MarshalError(c.Name(), err)
	}
	return buf.Bytes(), nil
}

func (c compressedCodec) Unmarshal(data []byte, v any) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return blame.UnmarshalError(c.Name(), err)
	}
	defer func() {
		if err := gz.Close(); err != nil {
			helpers.Println(constant.ERROR, "Error closing gzip reader: ", err)
		}
	}()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return blame.UnmarshalError(c.Name(), err)
	}
	return c.inner.Unmarshal(raw, v)
}
