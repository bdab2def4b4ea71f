package offchain

import "encoding/binary"

// JoinKey flattens (prefix, key) into a single key for backends without native namespaces.
// The format is: 4 bytes prefix length (big endian), prefix, key.
// The result is never empty and distinct pairs never produce the same key.
func JoinKey(prefix, key []byte) []byte {
	joined := make([]byte, 4+len(prefix)+len(key))
	binary.BigEndian.PutUint32(joined[:4], uint32(len(prefix)))
	copy(joined[4:], prefix)
	copy(joined[4+len(prefix):], key)
	return joined
}

// SplitKey is the inverse of JoinKey. The boolean is false if joined is malformed.
func SplitKey(joined []byte) (prefix, key []byte, ok bool) {
	if len(joined) < 4 {
		return nil, nil, false
	}
	prefixLen := int(binary.BigEndian.Uint32(joined[:4]))
	if len(joined) < 4+prefixLen {
		return nil, nil, false
	}
	return joined[4 : 4+prefixLen], joined[4+prefixLen:], true
}
