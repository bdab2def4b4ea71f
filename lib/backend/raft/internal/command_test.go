package internal

import (
	"bytes"
	"testing"
)

func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name: "Command with prefix, key and value",
			command: Command{
				Type:   CommandTSet,
				Prefix: []byte("storage"),
				Key:    []byte("testkey"),
				Value:  []byte("testvalue"),
			},
			expected: 1 + 4 + 7 + 4 + 7 + 9, // Type + PrefixLen + Prefix + KeyLen + Key + Value
		},
		{
			name: "Remove command without value",
			command: Command{
				Type:   CommandTRemove,
				Prefix: []byte("storage"),
				Key:    []byte("testkey"),
			},
			expected: 1 + 4 + 7 + 4 + 7,
		},
		{
			name:     "Empty command",
			command:  Command{},
			expected: headerSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.command.SizeBytes()
			if size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
			if got := len(tt.command.Serialize()); got != tt.expected {
				t.Errorf("len(Serialize()) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name: "Set with value",
			command: Command{
				Type:   CommandTSet,
				Prefix: []byte("storage"),
				Key:    []byte("testkey"),
				Value:  []byte("testvalue"),
			},
		},
		{
			name: "Remove",
			command: Command{
				Type:   CommandTRemove,
				Prefix: []byte("storage"),
				Key:    []byte("testkey"),
			},
		},
		{
			name: "Empty key and value",
			command: Command{
				Type:   CommandTSet,
				Prefix: []byte("storage"),
			},
		},
		{
			name: "Binary data",
			command: Command{
				Type:   CommandTSet,
				Prefix: []byte{0x00, 0x01},
				Key:    []byte{0xff, 0x00, 0xfe},
				Value:  []byte{0x00, 0x00, 0x00},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.command.Serialize()

			var got Command
			if err := got.Deserialize(data); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			if got.Type != tt.command.Type {
				t.Errorf("Type = %v, want %v", got.Type, tt.command.Type)
			}
			if !bytes.Equal(got.Prefix, tt.command.Prefix) {
				t.Errorf("Prefix = %v, want %v", got.Prefix, tt.command.Prefix)
			}
			if !bytes.Equal(got.Key, tt.command.Key) {
				t.Errorf("Key = %v, want %v", got.Key, tt.command.Key)
			}
			if !bytes.Equal(got.Value, tt.command.Value) {
				t.Errorf("Value = %v, want %v", got.Value, tt.command.Value)
			}

			// decoded fields must not alias the input
			for i := range data {
				data[i] = 0xAA
			}
			if len(tt.command.Key) > 0 && !bytes.Equal(got.Key, tt.command.Key) {
				t.Errorf("Key changed after modifying input buffer")
			}
		})
	}
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "Empty data", data: []byte{}},
		{name: "Too short for header", data: []byte{0, 0, 0, 0}},
		{name: "Prefix length exceeds data", data: []byte{0, 0, 0, 0, 10, 1, 2}},
		{name: "Key length exceeds data", data: []byte{0, 0, 0, 0, 0, 0, 0, 0, 5, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			if err := cmd.Deserialize(tt.data); err == nil {
				t.Errorf("Deserialize() expected error for %v", tt.data)
			}
		})
	}
}

func TestCommandTypeString(t *testing.T) {
	if CommandTSet.String() != "Set" {
		t.Errorf("CommandTSet.String() = %s", CommandTSet.String())
	}
	if CommandTRemove.String() != "Remove" {
		t.Errorf("CommandTRemove.String() = %s", CommandTRemove.String())
	}
	if CommandType(42).String() != "Unknown(42)" {
		t.Errorf("CommandType(42).String() = %s", CommandType(42).String())
	}
}
