package serializer

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/okv/rpc/common"
)

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters
	// It returns an error if any
	Deserialize(b []byte, msg *common.Message) error
}

// compressedSuffix selects the zstd wrapper, e.g. "binary+zstd"
const compressedSuffix = "+zstd"

// FromName creates a serializer by name: json, gob or binary, optionally suffixed with +zstd.
// Client and server must use the same name.
func FromName(name string) (IRPCSerializer, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	compressed := strings.HasSuffix(name, compressedSuffix)
	base := strings.TrimSuffix(name, compressedSuffix)

	var s IRPCSerializer
	switch base {
	case "json":
		s = NewJSONSerializer()
	case "gob":
		s = NewGOBSerializer()
	case "binary":
		s = NewBinarySerializer()
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of: json, gob, binary, optionally with suffix %s)", name, compressedSuffix)
	}

	if compressed {
		return NewCompressedSerializer(s)
	}
	return s, nil
}
