package app

import (
	"strings"
	"testing"
)

func TestRuntimeFactory_Host(t *testing.T) {
	factory := NewRuntimeFactory()

	rt, err := factory.GetRuntime("host")
	if err != nil {
		t.Fatalf("Expected host runtime, got error: %v", err)
	}
	if rt == nil {
		t.Fatal("Expected non-nil host runtime")
	}

	// An empty kind defaults to the host runtime
	rt, err = factory.GetRuntime("")
	if err != nil || rt == nil {
		t.Fatalf("Expected host runtime for empty kind, got rt=%v err=%v", rt, err)
	}
}

func TestRuntimeFactory_Unsupported(t *testing.T) {
	factory := NewRuntimeFactory()

	_, err := factory.GetRuntime("podman")
	if err == nil {
		t.Fatal("Expected error for unsupported runtime, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported runtime") {
		t.Errorf("Unexpected error: %v", err)
	}
}
