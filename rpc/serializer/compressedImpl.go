package serializer

import (
	"fmt"

	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/klauspost/compress/zstd"
)

const (
	// compressThreshold is the minimum payload size that gets compressed
	compressThreshold = 1024
	// maxDecodedSize limits the memory a single decompressed message may use
	maxDecodedSize = 64 << 20

	markerPlain      byte = 0
	markerCompressed byte = 1
)

// NewCompressedSerializer wraps inner so that payloads of at least 1 KiB are
// compressed with zstd. Every payload starts with a marker byte stating
// whether the rest is compressed.
func NewCompressedSerializer(inner IRPCSerializer) (IRPCSerializer, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &compressedSerializerImpl{
		inner:   inner,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// compressedSerializerImpl implements IRPCSerializer by compressing the output of another serializer.
// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and decoder are shared.
type compressedSerializerImpl struct {
	inner   IRPCSerializer
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (c *compressedSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	data, err := c.inner.Serialize(msg)
	if err != nil {
		return nil, err
	}

	if len(data) < compressThreshold {
		out := make([]byte, 1+len(data))
		out[0] = markerPlain
		copy(out[1:], data)
		return out, nil
	}

	dst := make([]byte, 1, 1+len(data)/2)
	dst[0] = markerCompressed
	return c.encoder.EncodeAll(data, dst), nil
}

func (c *compressedSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	if len(b) < 1 {
		return fmt.Errorf("data too short for compression marker")
	}

	switch b[0] {
	case markerPlain:
		return c.inner.Deserialize(b[1:], msg)
	case markerCompressed:
		data, err := c.decoder.DecodeAll(b[1:], nil)
		if err != nil {
			return fmt.Errorf("decompress message: %w", err)
		}
		return c.inner.Deserialize(data, msg)
	default:
		return fmt.Errorf("unknown compression marker %d", b[0])
	}
}
