package ws

import "testing"

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
		wantErr  bool
	}{
		{"localhost:8080", "ws://localhost:8080/ws", false},
		{"ws://localhost:8080", "ws://localhost:8080/ws", false},
		{"wss://example.com/rpc", "wss://example.com/rpc", false},
		{"http://localhost:8080", "", true},
	}

	for _, tt := range tests {
		got, err := endpointURL(tt.endpoint)
		if (err != nil) != tt.wantErr {
			t.Errorf("endpointURL(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("endpointURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}
