package offchain

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestParseStorageKind(t *testing.T) {
	tests := []struct {
		in      string
		want    StorageKind
		wantErr bool
	}{
		{"PERSISTENT", StorageKindPersistent, false},
		{"persistent", StorageKindPersistent, false},
		{" Local ", StorageKindLocal, false},
		{"", 0, true},
		{"remote", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStorageKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStorageKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStorageKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStorageKindString(t *testing.T) {
	if StorageKindPersistent.String() != "PERSISTENT" || StorageKindLocal.String() != "LOCAL" {
		t.Errorf("Unexpected names %s %s", StorageKindPersistent, StorageKindLocal)
	}
	if StorageKind(9).String() != "UNKNOWN(9)" {
		t.Errorf("Unexpected name %s", StorageKind(9))
	}
	if StorageKind(9).IsValid() || StorageKind(0).IsValid() {
		t.Errorf("Unknown kinds must not be valid")
	}
}

func TestStorageKindJSON(t *testing.T) {
	data, err := json.Marshal(StorageKindLocal)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"LOCAL"` {
		t.Errorf("Marshal = %s", data)
	}

	var k StorageKind
	if err := json.Unmarshal([]byte(`"persistent"`), &k); err != nil || k != StorageKindPersistent {
		t.Errorf("Unmarshal = %v, %v", k, err)
	}
	if err := json.Unmarshal([]byte(`"other"`), &k); err == nil {
		t.Errorf("Expected error for unknown kind")
	}
	if _, err := json.Marshal(StorageKind(5)); err == nil {
		t.Errorf("Expected error when marshalling unknown kind")
	}
}

func TestJoinSplitKey(t *testing.T) {
	tests := []struct {
		prefix, key []byte
	}{
		{[]byte("storage"), []byte("key")},
		{[]byte("storage"), nil},
		{nil, []byte("key")},
		{[]byte{0, 0, 0, 1}, []byte{0xff}},
	}

	for _, tt := range tests {
		joined := JoinKey(tt.prefix, tt.key)
		if len(joined) == 0 {
			t.Fatalf("JoinKey returned empty key")
		}
		p, k, ok := SplitKey(joined)
		if !ok || !bytes.Equal(p, tt.prefix) || !bytes.Equal(k, tt.key) {
			t.Errorf("SplitKey(JoinKey(%q, %q)) = %q, %q, %v", tt.prefix, tt.key, p, k, ok)
		}
	}

	if bytes.Equal(JoinKey([]byte("ab"), []byte("c")), JoinKey([]byte("a"), []byte("bc"))) {
		t.Errorf("JoinKey must keep prefix and key apart")
	}

	if _, _, ok := SplitKey([]byte{0, 0}); ok {
		t.Errorf("Expected SplitKey to reject short input")
	}
	if _, _, ok := SplitKey([]byte{0, 0, 0, 9, 'a'}); ok {
		t.Errorf("Expected SplitKey to reject truncated prefix")
	}
}
