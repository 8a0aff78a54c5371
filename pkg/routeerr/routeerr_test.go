package routeerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAsInvalidReference(t *testing.T) {
	var err error = &InvalidReference{NodeID: 42}
	wrapped := fmt.Errorf("lookup failed: %w", err)

	var target *InvalidReference
	if !errors.As(wrapped, &target) {
		t.Fatalf("expected errors.As to unwrap InvalidReference")
	}
	if target.NodeID != 42 {
		t.Fatalf("expected NodeID 42, got %d", target.NodeID)
	}
}

func TestStepLimitExceededMessage(t *testing.T) {
	err := &StepLimitExceeded{Limit: DefaultStepLimit}
	if err.Error() == "" {
		t.Fatalf("expected a non-empty message")
	}
}

func TestParseErrorUnwraps(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := &ParseError{Format: "xml", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("expected errors.Is to see through ParseError")
	}
}

func TestIoErrorUnwraps(t *testing.T) {
	inner := errors.New("permission denied")
	err := &IoError{Op: "open graph file", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("expected errors.Is to see through IoError")
	}
}
