package service

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "question", Message: "cannot be empty"}

	if !strings.Contains(err.Error(), "question") {
		t.Errorf("Error() = %q, want it to name the field", err.Error())
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("Error() = %q, want it to carry the message", err.Error())
	}
}

func TestWrapError(t *testing.T) {
	base := errors.New("base failure")

	wrapped := WrapError(base, "context")
	if !errors.Is(wrapped, base) {
		t.Error("WrapError() lost the wrapped error")
	}
	if !strings.HasPrefix(wrapped.Error(), "context: ") {
		t.Errorf("WrapError() message = %q", wrapped.Error())
	}

	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
}
