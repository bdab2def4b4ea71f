package safety

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/ValentinKolb/okv/lib/offchain"
)

// --------------------------------------------------------------------------
// Per-call decision
// --------------------------------------------------------------------------

// DenyUnsafe states whether unsafe calls are denied for the current caller.
type DenyUnsafe bool

const (
	DenyUnsafeYes DenyUnsafe = true
	DenyUnsafeNo  DenyUnsafe = false
)

type denyUnsafeKey struct{}

// WithDenyUnsafe returns a copy of ctx carrying the decision d.
func WithDenyUnsafe(ctx context.Context, d DenyUnsafe) context.Context {
	return context.WithValue(ctx, denyUnsafeKey{}, d)
}

// FromContext returns the decision stored in ctx. The boolean is false if ctx carries none.
func FromContext(ctx context.Context) (DenyUnsafe, bool) {
	if ctx == nil {
		return DenyUnsafeYes, false
	}
	d, ok := ctx.Value(denyUnsafeKey{}).(DenyUnsafe)
	return d, ok
}

// Check returns offchain.ErrUnsafeRPCCalled if d denies unsafe calls.
func (d DenyUnsafe) Check() error {
	if d {
		return offchain.ErrUnsafeRPCCalled
	}
	return nil
}

// CheckIfSafe returns nil if the caller described by ctx may perform unsafe calls.
// A context without a decision is denied.
func CheckIfSafe(ctx context.Context) error {
	d, ok := FromContext(ctx)
	if !ok {
		return offchain.ErrUnsafeRPCCalled
	}
	return d.Check()
}

// NewContextGate returns the gate used by the server, it delegates to CheckIfSafe.
func NewContextGate() offchain.Gate {
	return offchain.GateFunc(CheckIfSafe)
}

// --------------------------------------------------------------------------
// Policy
// --------------------------------------------------------------------------

// RPCMethods is the policy that decides which callers may perform unsafe calls.
type RPCMethods string

const (
	RPCMethodsSafe   RPCMethods = "safe"
	RPCMethodsUnsafe RPCMethods = "unsafe"
	RPCMethodsAuto   RPCMethods = "auto"
)

// ParseRPCMethods converts a string (case-insensitive) to an RPCMethods policy.
func ParseRPCMethods(s string) (RPCMethods, error) {
	switch m := RPCMethods(strings.ToLower(strings.TrimSpace(s))); m {
	case RPCMethodsSafe, RPCMethodsUnsafe, RPCMethodsAuto:
		return m, nil
	default:
		return "", fmt.Errorf("invalid rpc methods policy: %q (expected one of: safe, unsafe, auto)", s)
	}
}

// DenyUnsafe computes the decision for a caller connected from peer.
// Unknown policies and (under auto) unknown peers are denied.
func (m RPCMethods) DenyUnsafe(peer net.Addr) DenyUnsafe {
	switch m {
	case RPCMethodsUnsafe:
		return DenyUnsafeNo
	case RPCMethodsAuto:
		if IsLocalPeer(peer) {
			return DenyUnsafeNo
		}
		return DenyUnsafeYes
	default:
		return DenyUnsafeYes
	}
}

// IsLocalPeer reports whether peer is a unix socket or a loopback address.
func IsLocalPeer(peer net.Addr) bool {
	if peer == nil {
		return false
	}

	switch addr := peer.(type) {
	case *net.UnixAddr:
		return true
	case *net.TCPAddr:
		return addr != nil && addr.IP.IsLoopback()
	}

	if peer.Network() == "unix" {
		return true
	}

	// fallback for generic addresses (e.g. parsed from http.Request.RemoteAddr)
	addrPort, err := netip.ParseAddrPort(peer.String())
	if err != nil {
		return false
	}
	return addrPort.Addr().Unmap().IsLoopback()
}
