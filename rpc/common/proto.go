package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/okv/lib/offchain"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Kind  offchain.StorageKind `json:"kind,omitempty"`  // Used for: Set, Clear, Get
	Key   Bytes                `json:"key,omitempty"`   // Used for: Set, Clear, Get
	Value Bytes                `json:"value,omitempty"` // Used for: Set (request), Get (response)

	// Response only fields
	Ok   bool               `json:"ok,omitempty"`   // Used for: Get responses
	Code offchain.ErrorCode `json:"code,omitempty"` // Zero if no error, otherwise the offchain.ErrorCode
	Err  string             `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message

	// Meta information
	Meta Bytes `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// AsError rebuilds the typed error carried by a response, nil if the response is no error.
func (m *Message) AsError() error {
	if m.Code == 0 && m.Err == "" && m.MsgType != MsgTError {
		return nil
	}
	code := m.Code
	if code == 0 {
		code = offchain.CodeInternalError
	}
	return offchain.FromCode(code, m.Err)
}

// setErr stores err in the response fields
func (m *Message) setErr(err error) {
	if err == nil {
		return
	}
	m.Code = offchain.CodeOf(err)
	m.Err = offchain.MessageOf(err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(kind offchain.StorageKind, key, value []byte) *Message {
	return &Message{
		MsgType: MsgTOffchainSet,
		Kind:    kind,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTOffchainSet,
	}
	msg.setErr(err)
	return msg
}

// NewClearRequest creates a new Clear request
func NewClearRequest(kind offchain.StorageKind, key []byte) *Message {
	return &Message{
		MsgType: MsgTOffchainClear,
		Kind:    kind,
		Key:     key,
	}
}

// NewClearResponse creates a new Clear response
func NewClearResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTOffchainClear,
	}
	msg.setErr(err)
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(kind offchain.StorageKind, key []byte) *Message {
	return &Message{
		MsgType: MsgTOffchainGet,
		Kind:    kind,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTOffchainGet,
		Ok:      ok,
		Value:   value,
	}
	msg.setErr(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTError,
	}
	msg.setErr(err)
	return msg
}

// --------------------------------------------------------------------------
// Bytes
// --------------------------------------------------------------------------

// Bytes is a byte slice encoded as 0x-prefixed lower case hex in JSON.
// All other serializers treat it as a plain []byte.
type Bytes []byte

// MarshalJSON encodes b as "0x...".
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(b))
}

// UnmarshalJSON decodes a hex string, the 0x prefix is optional.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return fmt.Errorf("invalid hex bytes %q: %w", s, err)
	}
	*b = decoded
	return nil
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
// The offchain types use the RPC method names.
func (t MessageType) String() string {
	switch t {
	case MsgTOffchainSet:
		return "offchain_localStorageSet"
	case MsgTOffchainClear:
		return "offchain_localStorageClear"
	case MsgTOffchainGet:
		return "offchain_localStorageGet"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "offchain_localStorageSet":
		*t = MsgTOffchainSet
	case "offchain_localStorageClear":
		*t = MsgTOffchainClear
	case "offchain_localStorageGet":
		*t = MsgTOffchainGet
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IOffchain operations

	MsgTOffchainSet   // Store a value
	MsgTOffchainClear // Remove a value
	MsgTOffchainGet   // Read a value
)
