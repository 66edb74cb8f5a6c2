// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up a store directory,
// running the CLI and inspecting the artifacts it writes.
package shared

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/carlock/cmd"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// SetupTestEnvironment changes into a fresh temporary directory, which the
// CLI uses as its store directory when --dir is not given.
func SetupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get original working directory: %v", err)
	}
	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Setenv("NO_COLOR", "1")

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		cmd.ResetGlobalState()
	})

	// Resolve symlinks so paths compare equal to what the CLI reports.
	if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
		tempDir = resolved
	}
	return tempDir
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// RunCarlock runs the CLI with args in the current directory.
func RunCarlock(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd.ResetGlobalState()
	root := cmd.GetCarlockCmd()
	root.SetArgs(args)
	return CaptureOutput(func() error {
		return root.Execute()
	})
}

// MustRunCarlock runs the CLI and fails the test on error.
func MustRunCarlock(t *testing.T, args ...string) string {
	t.Helper()
	output, err := RunCarlock(t, args...)
	if err != nil {
		t.Fatalf("carlock %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}

// ReadArtifact reads a code-sized artifact from the current directory.
func ReadArtifact(t *testing.T, name string) *secrets.Artifact {
	t.Helper()
	a, err := secrets.ReadArtifact(name, secrets.CodeSize)
	if err != nil {
		t.Fatalf("Failed to read artifact %s: %v", name, err)
	}
	return a
}
