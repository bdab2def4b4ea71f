package offchain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StorageKind selects the offchain storage namespace of a call.
// The numeric values match the wire representation used by the binary serializer.
type StorageKind uint32

const (
	// StorageKindPersistent is the persistent offchain worker storage, the only kind served.
	StorageKindPersistent StorageKind = 1
	// StorageKindLocal is the node-local storage. It is recognized but never available through this service.
	StorageKindLocal StorageKind = 2
)

// StoragePrefix is the namespace all persistent keys of the service are stored under.
var StoragePrefix = []byte("storage")

// IsValid reports whether k is one of the known storage kinds.
func (k StorageKind) IsValid() bool {
	return k == StorageKindPersistent || k == StorageKindLocal
}

// String returns the string representation of a StorageKind.
func (k StorageKind) String() string {
	switch k {
	case StorageKindPersistent:
		return "PERSISTENT"
	case StorageKindLocal:
		return "LOCAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(k))
	}
}

// ParseStorageKind converts a string (case-insensitive) to a StorageKind.
func ParseStorageKind(s string) (StorageKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PERSISTENT":
		return StorageKindPersistent, nil
	case "LOCAL":
		return StorageKindLocal, nil
	default:
		return 0, fmt.Errorf("unknown storage kind: %q (expected one of: persistent, local)", s)
	}
}

// MarshalJSON encodes the StorageKind as its string representation.
func (k StorageKind) MarshalJSON() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid storage kind %d", uint32(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a StorageKind from its string representation.
func (k *StorageKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseStorageKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
