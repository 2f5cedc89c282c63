package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeWorldRequired, "world is required")
	if err.Error() != "world is required" {
		t.Fatalf("expected message, got %q", err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "world missing")
	if !stderrors.Is(err, New(CodeNotFound, "anything")) {
		t.Fatal("expected codes to match")
	}
	if stderrors.Is(err, New(CodeWorldRequired, "anything")) {
		t.Fatal("expected different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeUnknown, "save failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in the chain")
	}
}

func TestGetCodeThroughChain(t *testing.T) {
	inner := New(CodeSeverityIndexInvalid, "bad yaml")
	wrapped := fmt.Errorf("load reference data: %w", inner)
	if got := GetCode(wrapped); got != CodeSeverityIndexInvalid {
		t.Fatalf("expected code through fmt wrap, got %s", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %s", got)
	}
}

func TestIsCode(t *testing.T) {
	err := WithMetadata(CodeConfigInvalid, "bad tick count", map[string]string{"ticks": "0"})
	if !IsCode(err, CodeConfigInvalid) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("expected IsCode not to match a different code")
	}
}
