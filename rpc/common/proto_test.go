package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ValentinKolb/okv/lib/offchain"
)

func TestBytesJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Bytes
		json string
	}{
		{"empty", Bytes{}, `"0x"`},
		{"simple", Bytes{0x01, 0x02}, `"0x0102"`},
		{"high bytes", Bytes{0xde, 0xad, 0xbe, 0xef}, `"0xdeadbeef"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Marshal = %s, want %s", data, tt.json)
			}

			var out Bytes
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !bytes.Equal(out, tt.in) {
				t.Errorf("Unmarshal = %x, want %x", out, tt.in)
			}
		})
	}
}

func TestBytesUnmarshalVariants(t *testing.T) {
	var b Bytes
	if err := json.Unmarshal([]byte(`"ABCD"`), &b); err != nil || !bytes.Equal(b, []byte{0xab, 0xcd}) {
		t.Errorf("Expected prefix-less upper case hex to decode, got %x %v", b, err)
	}
	if err := json.Unmarshal([]byte(`null`), &b); err != nil || b != nil {
		t.Errorf("Expected null to decode to nil, got %x %v", b, err)
	}
	if err := json.Unmarshal([]byte(`"0xzz"`), &b); err == nil {
		t.Errorf("Expected error for invalid hex")
	}
	if err := json.Unmarshal([]byte(`"0x123"`), &b); err == nil {
		t.Errorf("Expected error for odd length hex")
	}
}

func TestMessageJSON(t *testing.T) {
	msg := NewSetRequest(offchain.StorageKindPersistent, []byte{0x01}, []byte("hi"))

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, want := range []string{`"msg_type":"offchain_localStorageSet"`, `"kind":"PERSISTENT"`, `"key":"0x01"`, `"value":"0x6869"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %s in %s", want, data)
		}
	}

	var out Message
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.MsgType != MsgTOffchainSet || out.Kind != offchain.StorageKindPersistent || !bytes.Equal(out.Value, []byte("hi")) {
		t.Errorf("Unexpected message %+v", out)
	}
}

func TestMessageTypeNames(t *testing.T) {
	for _, mt := range []MessageType{MsgTUnknown, MsgTSuccess, MsgTError, MsgTOffchainSet, MsgTOffchainClear, MsgTOffchainGet} {
		data, err := json.Marshal(mt)
		if err != nil {
			t.Fatalf("Marshal(%s) failed: %v", mt, err)
		}
		var out MessageType
		if err := json.Unmarshal(data, &out); err != nil || out != mt {
			t.Errorf("Round trip of %s gave %s (%v)", mt, out, err)
		}
	}

	var mt MessageType
	if err := json.Unmarshal([]byte(`"offchain_localStorageDrop"`), &mt); err == nil {
		t.Errorf("Expected error for unknown method")
	}
}

func TestResponseErrors(t *testing.T) {
	if err := NewSetResponse(nil).AsError(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := NewGetResponse([]byte("v"), true, nil).AsError(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	resp := NewClearResponse(offchain.ErrUnavailableStorageKind)
	if resp.Code != offchain.CodeUnavailableStorageKind || resp.Err != "This storage kind is not available yet" {
		t.Errorf("Unexpected response fields %d %q", resp.Code, resp.Err)
	}
	if err := resp.AsError(); !errors.Is(err, offchain.ErrUnavailableStorageKind) {
		t.Errorf("Expected ErrUnavailableStorageKind, got %v", err)
	}

	// plain errors are reported as internal errors
	resp = NewErrorResponse(errors.New("boom"))
	if err := resp.AsError(); !errors.Is(err, offchain.ErrInternal) {
		t.Errorf("Expected ErrInternal, got %v", err)
	}

	// an error message without code is still an error
	resp = &Message{MsgType: MsgTError, Err: "legacy"}
	if err := resp.AsError(); !errors.Is(err, offchain.ErrInternal) {
		t.Errorf("Expected ErrInternal, got %v", err)
	}
}

func TestServerConfigString(t *testing.T) {
	c := ServerConfig{
		ServiceID:      100,
		Backend:        "raft",
		RPCMethods:     "auto",
		ReplicaID:      1,
		ClusterMembers: map[uint64]string{1: "localhost:63001", 2: "localhost:63002"},
		Transport:      ServerTransportConfig{Endpoint: "0.0.0.0:8080"},
		LogLevel:       "info",
	}
	s := c.String()
	for _, want := range []string{"0.0.0.0:8080", "raft", "auto", "localhost:63002"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %q in config string", want)
		}
	}

	if nh := c.ToNodeHostConfig(); nh.RaftAddress != "localhost:63001" {
		t.Errorf("Unexpected raft address %s", nh.RaftAddress)
	}
	if rc := c.ToDragonboatConfig(); rc.ShardID != 100 || rc.ReplicaID != 1 {
		t.Errorf("Unexpected raft config %+v", rc)
	}
}
