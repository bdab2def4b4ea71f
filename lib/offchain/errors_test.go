package offchain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		code ErrorCode
		msg  string
	}{
		{ErrUnsafeRPCCalled, -32601, "RPC call is unsafe to be called externally"},
		{ErrUnavailableStorageKind, 5001, "This storage kind is not available yet"},
		{ErrBackend, 5002, ""},
		{ErrInvalidParams, -32602, ""},
		{ErrInternal, -32603, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
			if tt.msg != "" && tt.err.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", tt.err.Msg, tt.msg)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	// errors with the same code match, independent of the message
	if !errors.Is(NewError(CodeUnsafeRPCCalled, "other message"), ErrUnsafeRPCCalled) {
		t.Errorf("Expected errors with same code to match")
	}
	if errors.Is(ErrUnsafeRPCCalled, ErrUnavailableStorageKind) {
		t.Errorf("Expected errors with different codes not to match")
	}

	// matches through fmt wrapping
	wrapped := fmt.Errorf("context: %w", ErrUnavailableStorageKind)
	if !errors.Is(wrapped, ErrUnavailableStorageKind) {
		t.Errorf("Expected wrapped error to match")
	}

	cause := errors.New("cause")
	err := WrapError(CodeBackendFailure, "backend", cause)
	if !errors.Is(err, ErrBackend) || !errors.Is(err, cause) {
		t.Errorf("Expected error to match sentinel and cause")
	}
	if errors.Is(err, errors.New("cause")) {
		t.Errorf("Expected error not to match unrelated error")
	}
}

func TestFromCode(t *testing.T) {
	err := FromCode(CodeUnavailableStorageKind, "This storage kind is not available yet")
	if !errors.Is(err, ErrUnavailableStorageKind) {
		t.Errorf("Expected rebuilt error to match sentinel, got %v", err)
	}
	if MessageOf(err) != "This storage kind is not available yet" {
		t.Errorf("Unexpected message %q", MessageOf(err))
	}

	if MessageOf(FromCode(CodeInternalError, "")) != "InternalError" {
		t.Errorf("Expected empty message to default to code name")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(ErrUnsafeRPCCalled) != CodeUnsafeRPCCalled {
		t.Errorf("CodeOf(ErrUnsafeRPCCalled) = %d", CodeOf(ErrUnsafeRPCCalled))
	}
	if CodeOf(fmt.Errorf("wrapped: %w", ErrBackend)) != CodeBackendFailure {
		t.Errorf("CodeOf should unwrap")
	}
	if CodeOf(errors.New("plain")) != CodeInternalError {
		t.Errorf("CodeOf(plain error) should be CodeInternalError")
	}
}

func TestErrorString(t *testing.T) {
	s := WrapError(CodeBackendFailure, "backend failure", errors.New("io error")).Error()
	if !strings.Contains(s, "5002") || !strings.Contains(s, "backend failure") || !strings.Contains(s, "io error") {
		t.Errorf("Unexpected error string %q", s)
	}
	if MessageOf(errors.New("plain")) != "plain" {
		t.Errorf("MessageOf(plain error) = %q", MessageOf(errors.New("plain")))
	}
}
