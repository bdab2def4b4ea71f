// Package safety implements the safety gate of the offchain storage service.
//
// Whether a call may perform unsafe operations is decided once per call by the
// server and carried in the call's context.Context as a DenyUnsafe value. The
// gate (CheckIfSafe / NewContextGate) only reads that decision. A context
// without a decision is treated as denied.
//
// The decision itself is derived from the configured RPCMethods policy and
// the address of the caller:
//
//   - RPCMethodsSafe:   unsafe calls are always denied
//   - RPCMethodsUnsafe: unsafe calls are always allowed
//   - RPCMethodsAuto:   unsafe calls are allowed for loopback and unix socket peers only
package safety
