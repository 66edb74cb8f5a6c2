// Package cmd contains testing utilities shared between command tests.
// This file provides helpers for running the CLI against a temporary store
// directory and capturing its output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"testing"
)

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
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

// runCarlock executes the CLI with args against the store in dir.
func runCarlock(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	CarlockCmd.SetArgs(append([]string{"--dir", dir}, args...))
	return captureOutput(func() error {
		return CarlockCmd.Execute()
	})
}

// mustRun executes the CLI and fails the test on error.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	output, err := runCarlock(t, dir, args...)
	if err != nil {
		t.Fatalf("carlock %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}

// setupTestEnvironment disables color and returns a fresh store directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(ResetGlobalState)
	return t.TempDir()
}
