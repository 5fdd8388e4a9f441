package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTakesMessageFromCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindDataAccess, cause)

	if err.Message != "connection refused" {
		t.Fatalf("Message = %q", err.Message)
	}
	if err.Error() != "connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
}

func TestWrapCauseWithoutText(t *testing.T) {
	err := Wrap(KindDataAccess, errors.New(""))
	if err.Message != "" {
		t.Fatalf("Message = %q, want empty", err.Message)
	}
}

func TestKindOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("service: %w", NotFound("Tag with name %q not found", "go"))

	if KindOf(err) != KindNotFound {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if !Is(err, KindNotFound) {
		t.Fatal("Is(KindNotFound) = false")
	}
	if got := MessageOf(err); got != `Tag with name "go" not found` {
		t.Fatalf("MessageOf = %q", got)
	}
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindUnknown {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if MessageOf(err) != "boom" {
		t.Fatalf("MessageOf = %q", MessageOf(err))
	}
	if MessageOf(nil) != "" {
		t.Fatal("MessageOf(nil) not empty")
	}
}

func TestErrorStringWithDistinctMessage(t *testing.T) {
	err := &Error{Kind: KindAggregation, Message: "bad shape", Err: errors.New("nil map")}
	if err.Error() != "bad shape: nil map" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if KindAggregation.String() != "aggregation" {
		t.Fatalf("String() = %q", KindAggregation.String())
	}
}
