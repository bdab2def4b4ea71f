package transport

import (
	"context"
	"net"
	"testing"
)

func TestPeerContext(t *testing.T) {
	if PeerFromContext(context.Background()) != nil {
		t.Errorf("Expected no peer in empty context")
	}

	addr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1234}
	ctx := WithPeer(context.Background(), addr)
	if got := PeerFromContext(ctx); got != addr {
		t.Errorf("PeerFromContext() = %v, want %v", got, addr)
	}

	s := StringAddr{Net: "tcp", Addr: "10.0.0.1:80"}
	if got := PeerFromContext(WithPeer(context.Background(), s)); got.String() != "10.0.0.1:80" || got.Network() != "tcp" {
		t.Errorf("Unexpected peer %v", got)
	}
}
