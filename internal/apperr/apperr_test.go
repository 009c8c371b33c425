package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewNil(t *testing.T) {
	if err := New(Download, "fetch", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestKindThroughWrapping(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("pipeline: %w", New(Download, "fetch voice", base))

	if !IsKind(err, Download) {
		t.Errorf("expected download kind, got %q", KindOf(err))
	}
	if IsKind(err, Model) {
		t.Error("download error reported as model error")
	}
	if !errors.Is(err, base) {
		t.Error("expected errors.Is to reach the cause")
	}
	if got := err.Error(); got != "pipeline: fetch voice: connection reset" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(InvalidInput, "split", "empty buffer")
	if KindOf(err) != InvalidInput {
		t.Errorf("expected invalid_input, got %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain error should have no kind")
	}
}
