package transport

import (
	"context"
	"net"
)

type peerKey struct{}

// WithPeer returns a copy of ctx carrying the address of the remote peer of a request.
func WithPeer(ctx context.Context, addr net.Addr) context.Context {
	return context.WithValue(ctx, peerKey{}, addr)
}

// PeerFromContext returns the peer address stored by WithPeer, nil if there is none.
func PeerFromContext(ctx context.Context) net.Addr {
	addr, _ := ctx.Value(peerKey{}).(net.Addr)
	return addr
}

// StringAddr is a net.Addr for peers only known by their textual address (e.g. http.Request.RemoteAddr)
type StringAddr struct {
	Net  string
	Addr string
}

func (a StringAddr) Network() string { return a.Net }
func (a StringAddr) String() string  { return a.Addr }
