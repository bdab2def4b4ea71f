package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKind  byte = 1 << 0
	hasKey   byte = 1 << 1
	hasValue byte = 1 << 2
	hasOk    byte = 1 << 3
	hasCode  byte = 1 << 4
	hasErr   byte = 1 << 5
	hasMeta  byte = 1 << 6
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, b.sizeBytes(msg))

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Kind
	if msg.Kind != 0 {
		flags |= hasKind
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(msg.Kind))
		pos += 4
	}

	// Handle Key (an empty key is still a key)
	if msg.Key != nil {
		flags |= hasKey
		pos = putBytes(result, pos, msg.Key)
	}

	// Handle Value
	if msg.Value != nil {
		flags |= hasValue
		pos = putBytes(result, pos, msg.Value)
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Code
	if msg.Code != 0 {
		flags |= hasCode
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(msg.Code))
		pos += 4
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		pos = putBytes(result, pos, []byte(msg.Err))
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		pos = putBytes(result, pos, msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2

	var err error

	// Read Kind if present
	msg.Kind = 0
	if flags&hasKind != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for kind")
		}
		msg.Kind = offchain.StorageKind(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
	}

	// Read Key if present
	msg.Key = nil
	if flags&hasKey != 0 {
		if msg.Key, pos, err = getBytes(data, pos, "key"); err != nil {
			return err
		}
	}

	// Read Value if present
	msg.Value = nil
	if flags&hasValue != 0 {
		if msg.Value, pos, err = getBytes(data, pos, "value"); err != nil {
			return err
		}
	}

	// Read Ok if present
	msg.Ok = false
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos += 1
	}

	// Read Code if present
	msg.Code = 0
	if flags&hasCode != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for code")
		}
		msg.Code = offchain.ErrorCode(int32(binary.BigEndian.Uint32(data[pos : pos+4])))
		pos += 4
	}

	// Read Err if present
	msg.Err = ""
	if flags&hasErr != 0 {
		var errBytes []byte
		if errBytes, pos, err = getBytes(data, pos, "error"); err != nil {
			return err
		}
		msg.Err = string(errBytes)
	}

	// Read Meta if present
	msg.Meta = nil
	if flags&hasMeta != 0 {
		if msg.Meta, pos, err = getBytes(data, pos, "meta"); err != nil {
			return err
		}
	}

	if pos != len(data) {
		return fmt.Errorf("%d trailing bytes after message", len(data)-pos)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// putBytes writes a 4 byte length (big endian) followed by data, returns the new position
func putBytes(dst []byte, pos int, data []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(data)))
	pos += 4
	pos += copy(dst[pos:], data)
	return pos
}

// getBytes reads a length prefixed field into a new (non nil) slice, returns the new position
func getBytes(data []byte, pos int, field string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if n < 0 || pos+n > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s data", field)
	}

	out := make([]byte, n)
	copy(out, data[pos:pos+n])
	return out, pos + n, nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Kind != 0 {
		size += 4 // uint32
	}
	if msg.Key != nil {
		size += 4 + len(msg.Key) // 4 bytes for length + key bytes
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value) // 4 bytes for length + value bytes
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Code != 0 {
		size += 4 // int32
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta) // 4 bytes for length + meta bytes
	}

	return size
}
