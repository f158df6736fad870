package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shipgate/pkg/runtime"
)

func TestHostRuntime_Run_Success(t *testing.T) {
	rt := NewHostRuntime()

	err := rt.Run(context.Background(), runtime.RunOptions{
		Command: []string{"sh", "-c", "exit 0"},
	})
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
}

func TestHostRuntime_Run_NonZeroExit(t *testing.T) {
	rt := NewHostRuntime()

	err := rt.Run(context.Background(), runtime.RunOptions{
		Command: []string{"sh", "-c", "exit 3"},
	})
	if err == nil {
		t.Fatal("Expected error for non-zero exit, got nil")
	}
	if !strings.Contains(err.Error(), "exited with status 3") {
		t.Errorf("Expected exit status in error, got: %v", err)
	}
}

func TestHostRuntime_Run_CommandNotFound(t *testing.T) {
	rt := NewHostRuntime()

	// A command that cannot be started must fail the same way as a failing
	// exit status: with a non-nil error.
	err := rt.Run(context.Background(), runtime.RunOptions{
		Command: []string{"definitely-not-a-real-command-xyz"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown command, got nil")
	}
	if !strings.Contains(err.Error(), "failed to start command") {
		t.Errorf("Expected start failure in error, got: %v", err)
	}
}

func TestHostRuntime_Run_EmptyCommand(t *testing.T) {
	rt := NewHostRuntime()

	err := rt.Run(context.Background(), runtime.RunOptions{})
	if err == nil {
		t.Fatal("Expected error for empty command, got nil")
	}
}

func TestHostRuntime_Run_WorkingDirectoryAndEnv(t *testing.T) {
	rt := NewHostRuntime()
	tmpDir := t.TempDir()

	err := rt.Run(context.Background(), runtime.RunOptions{
		Command:          []string{"sh", "-c", `printf '%s' "$SHIPGATE_TEST_VALUE" > out.txt`},
		WorkingDirectory: tmpDir,
		EnvVars:          map[string]string{"SHIPGATE_TEST_VALUE": "hello"},
	})
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "out.txt"))
	if err != nil {
		t.Fatalf("Expected output file in working directory: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected environment value 'hello', got %q", string(data))
	}
}
