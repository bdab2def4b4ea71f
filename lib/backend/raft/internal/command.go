package internal

import (
	"encoding/binary"
	"fmt"
)

// CommandType defines the possible write operations for the state machine.
type CommandType uint8

const (
	CommandTSet    CommandType = iota // Insert or update an entry.
	CommandTRemove                    // Remove an entry.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTRemove:
		return "Remove"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// headerSize is Type + PrefixLen + KeyLen
const headerSize = 1 + 4 + 4

// Command represents a write executed by the state machine (a single entry in the raft log)
type Command struct {
	Type   CommandType
	Prefix []byte
	Key    []byte
	Value  []byte
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return headerSize + len(command.Prefix) + len(command.Key) + len(command.Value)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 4 bytes for prefix length (big endian),
// N bytes for prefix data,
// 4 bytes for key length (big endian),
// N bytes for key data,
// N bytes for value data (rest of the buffer)
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())
	result[0] = byte(command.Type)

	offset := 1
	binary.BigEndian.PutUint32(result[offset:offset+4], uint32(len(command.Prefix)))
	offset += 4
	offset += copy(result[offset:], command.Prefix)

	binary.BigEndian.PutUint32(result[offset:offset+4], uint32(len(command.Key)))
	offset += 4
	offset += copy(result[offset:], command.Key)

	copy(result[offset:], command.Value)
	return result
}

// Deserialize extracts all Command fields from a byte array.
// The fields don't alias data.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for command")
	}

	command.Type = CommandType(data[0])
	offset := 1

	prefixLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+prefixLen+4 {
		return fmt.Errorf("data too short for prefix of length %d", prefixLen)
	}
	command.Prefix = append([]byte{}, data[offset:offset+prefixLen]...)
	offset += prefixLen

	keyLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+keyLen {
		return fmt.Errorf("data too short for key of length %d", keyLen)
	}
	command.Key = append([]byte{}, data[offset:offset+keyLen]...)
	offset += keyLen

	command.Value = append([]byte{}, data[offset:]...)
	return nil
}
