package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "login session not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "login session not found" {
		t.Errorf("expected message 'login session not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("admission webhook denied the request")
	err := Wrap(ErrCodeSubmission, "create rejected", cause)

	if err.Code != ErrCodeSubmission {
		t.Errorf("expected code %s, got %s", ErrCodeSubmission, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("deadline exceeded")
	ctx := map[string]any{
		"user": "alice",
		"kind": "StorageClaim",
	}

	err := WrapWithContext(ErrCodeProvisioningTimeout, "claim still pending", cause, ctx)

	if err.Code != ErrCodeProvisioningTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeProvisioningTimeout, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["user"] != "alice" {
		t.Errorf("expected user to be alice")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeDuplicateSession, "session exists"),
			expected: "[DUPLICATE_SESSION] session exists",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"structured", New(ErrCodeValidation, "bad"), ErrCodeValidation},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeProvisioningFailed, "lost")), ErrCodeProvisioningFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("start: %w", New(ErrCodeDuplicateSession, "exists"))
	if !IsCode(err, ErrCodeDuplicateSession) {
		t.Error("expected IsCode to match wrapped code")
	}
	if IsCode(err, ErrCodeNotFound) {
		t.Error("expected IsCode not to match a different code")
	}
	if IsCode(nil, ErrCodeNotFound) {
		t.Error("expected IsCode(nil) to be false")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeValidation,
		ErrCodeSubmission,
		ErrCodeProvisioningTimeout,
		ErrCodeProvisioningFailed,
		ErrCodeDuplicateSession,
		ErrCodeNotFound,
		ErrCodeUnauthorized,
		ErrCodeInternal,
	}

	seen := map[ErrorCode]bool{}
	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
		if seen[code] {
			t.Errorf("duplicate error code: %v", code)
		}
		seen[code] = true
	}
}
