package safety

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/ValentinKolb/okv/lib/offchain"
)

// genericAddr is a net.Addr that is neither a TCPAddr nor a UnixAddr
type genericAddr struct {
	network, addr string
}

func (g genericAddr) Network() string { return g.network }
func (g genericAddr) String() string  { return g.addr }

func TestCheckIfSafe(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		allowed bool
	}{
		{"no decision", context.Background(), false},
		{"deny", WithDenyUnsafe(context.Background(), DenyUnsafeYes), false},
		{"allow", WithDenyUnsafe(context.Background(), DenyUnsafeNo), true},
		{"nil context", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIfSafe(tt.ctx)
			if tt.allowed && err != nil {
				t.Errorf("Expected call to be allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
				t.Errorf("Expected ErrUnsafeRPCCalled, got %v", err)
			}
		})
	}
}

func TestContextGate(t *testing.T) {
	gate := NewContextGate()
	if err := gate.Check(WithDenyUnsafe(context.Background(), DenyUnsafeNo)); err != nil {
		t.Errorf("Expected gate to allow, got %v", err)
	}
	if err := gate.Check(context.Background()); !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
		t.Errorf("Expected gate to deny, got %v", err)
	}
}

func TestParseRPCMethods(t *testing.T) {
	for in, want := range map[string]RPCMethods{
		"safe":   RPCMethodsSafe,
		"UNSAFE": RPCMethodsUnsafe,
		" auto ": RPCMethodsAuto,
	} {
		got, err := ParseRPCMethods(in)
		if err != nil || got != want {
			t.Errorf("ParseRPCMethods(%q) = %v, %v, want %v", in, got, err, want)
		}
	}

	if _, err := ParseRPCMethods("sometimes"); err == nil {
		t.Errorf("Expected error for unknown policy")
	}
}

func TestPolicyDecision(t *testing.T) {
	loopback := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}
	remote := &net.TCPAddr{IP: net.IPv4(10, 1, 2, 3), Port: 4000}
	unixPeer := &net.UnixAddr{Name: "@", Net: "unix"}

	tests := []struct {
		name   string
		policy RPCMethods
		peer   net.Addr
		want   DenyUnsafe
	}{
		{"safe loopback", RPCMethodsSafe, loopback, DenyUnsafeYes},
		{"safe unix", RPCMethodsSafe, unixPeer, DenyUnsafeYes},
		{"unsafe remote", RPCMethodsUnsafe, remote, DenyUnsafeNo},
		{"unsafe unknown peer", RPCMethodsUnsafe, nil, DenyUnsafeNo},
		{"auto loopback", RPCMethodsAuto, loopback, DenyUnsafeNo},
		{"auto unix", RPCMethodsAuto, unixPeer, DenyUnsafeNo},
		{"auto remote", RPCMethodsAuto, remote, DenyUnsafeYes},
		{"auto unknown peer", RPCMethodsAuto, nil, DenyUnsafeYes},
		{"invalid policy", RPCMethods("bogus"), loopback, DenyUnsafeYes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.DenyUnsafe(tt.peer); got != tt.want {
				t.Errorf("DenyUnsafe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLocalPeer(t *testing.T) {
	var nilTCP *net.TCPAddr

	tests := []struct {
		name string
		peer net.Addr
		want bool
	}{
		{"nil", nil, false},
		{"typed nil tcp", nilTCP, false},
		{"ipv4 loopback", &net.TCPAddr{IP: net.ParseIP("127.0.0.1")}, true},
		{"ipv6 loopback", &net.TCPAddr{IP: net.ParseIP("::1")}, true},
		{"private", &net.TCPAddr{IP: net.ParseIP("192.168.1.10")}, false},
		{"unix", &net.UnixAddr{Name: "/tmp/okv.sock", Net: "unix"}, true},
		{"generic loopback", genericAddr{"tcp", "127.0.0.1:5000"}, true},
		{"generic mapped loopback", genericAddr{"tcp", "[::ffff:127.0.0.1]:5000"}, true},
		{"generic remote", genericAddr{"tcp", "8.8.8.8:53"}, false},
		{"generic unix", genericAddr{"unix", "/tmp/okv.sock"}, true},
		{"garbage", genericAddr{"tcp", "not an address"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocalPeer(tt.peer); got != tt.want {
				t.Errorf("IsLocalPeer(%v) = %v, want %v", tt.peer, got, tt.want)
			}
		})
	}
}
