package offchain

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrorCode is the numeric code of an Error. The codes are part of the RPC
// protocol, a client uses them to rebuild the typed error.
type ErrorCode int32

const (
	CodeUnsafeRPCCalled        ErrorCode = -32601 // The safety gate denied the call.
	CodeInvalidParams          ErrorCode = -32602 // The request could not be interpreted.
	CodeInternalError          ErrorCode = -32603 // Failure outside the service (transport, serializer, routing).
	CodeUnavailableStorageKind ErrorCode = 5001   // The requested storage kind is not served.
	CodeBackendFailure         ErrorCode = 5002   // The storage backend reported an error.
)

func (c ErrorCode) String() string {
	switch c {
	case CodeUnsafeRPCCalled:
		return "UnsafeRpcCalled"
	case CodeInvalidParams:
		return "InvalidParams"
	case CodeInternalError:
		return "InternalError"
	case CodeUnavailableStorageKind:
		return "UnavailableStorageKind"
	case CodeBackendFailure:
		return "BackendFailure"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by the service. It wraps an ErrorCode and a message.
// Two errors match with errors.Is if their codes are equal.
type Error struct {
	Code ErrorCode // The error code
	Msg  string    // The error message
	err  error     // Optional cause (not transferred over RPC)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("OffchainError (code %d %s): %s: %v", e.Code, e.Code, e.Msg, e.err)
	}
	return fmt.Sprintf("OffchainError (code %d %s): %s", e.Code, e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Unwrap returns the cause of the error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message that wraps err.
func WrapError(code ErrorCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		err:  err,
	}
}

// Sentinel errors, compare with errors.Is.
var (
	ErrUnsafeRPCCalled        = NewError(CodeUnsafeRPCCalled, "RPC call is unsafe to be called externally")
	ErrUnavailableStorageKind = NewError(CodeUnavailableStorageKind, "This storage kind is not available yet")
	ErrBackend                = NewError(CodeBackendFailure, "offchain storage backend failure")
	ErrInvalidParams          = NewError(CodeInvalidParams, "invalid params")
	ErrInternal               = NewError(CodeInternalError, "internal error")
)

// FromCode rebuilds an error received over RPC. Known codes produce an *Error
// matching the corresponding sentinel, the message is kept as sent by the server.
func FromCode(code ErrorCode, msg string) error {
	if msg == "" {
		msg = code.String()
	}
	return NewError(code, msg)
}

// CodeOf returns the code of err if it is (or wraps) an *Error, CodeInternalError otherwise.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// MessageOf returns the message of err without the code decoration if it is an *Error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.err != nil {
			return fmt.Sprintf("%s: %v", e.Msg, e.err)
		}
		return e.Msg
	}
	return err.Error()
}
