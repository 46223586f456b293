package codec

import "github.com/abhissng/synapse/utils/types"

// for encoding and decoding
const (
	JSON        types.CodecType = "json"
	YAML        types.CodecType = "yaml"
	Gob         types.CodecType = "gob"
	MessagePack types.CodecType = "msgpack"

	// Gzip is appended to a codec name to compress its output, e.g. "msgpack+gzip".
	Gzip types.CodecType = "gzip"

	compressionSeparator = "+"
)
