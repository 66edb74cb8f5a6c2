package log_test

import (
	"strings"
	"testing"

	"github.com/PolarWolf314/carlock/test/integration/shared"
)

// TestLogIntegration contains integration tests for the `carlock log` command.
func TestLogIntegration(t *testing.T) {
	t.Run("LogInEmptyFolder", testLogInEmptyFolder)
	t.Run("LogRecordsProtocolSession", testLogRecordsProtocolSession)
	t.Run("LogWithOperationFilter", testLogWithOperationFilter)
}

func testLogInEmptyFolder(t *testing.T) {
	shared.SetupTestEnvironment(t)

	output := shared.MustRunCarlock(t, "log")
	if !strings.Contains(output, "No audit log entries found.") {
		t.Errorf("Expected empty log message, got: %s", output)
	}
}

func testLogRecordsProtocolSession(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.MustRunCarlock(t, "keygen")
	shared.MustRunCarlock(t, "open")
	shared.MustRunCarlock(t, "challenge")
	shared.MustRunCarlock(t, "solve")

	output := shared.MustRunCarlock(t, "log")
	for _, op := range []string{"keygen", "open", "challenge", "solve", "verify"} {
		if !strings.Contains(output, op) {
			t.Errorf("Expected %s entry, got: %s", op, output)
		}
	}
	if !strings.Contains(output, "result=pass") {
		t.Errorf("Expected passing verify entry, got: %s", output)
	}
}

func testLogWithOperationFilter(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.MustRunCarlock(t, "keygen")
	shared.MustRunCarlock(t, "open")
	shared.MustRunCarlock(t, "open")

	output := shared.MustRunCarlock(t, "log", "--op", "open")
	if strings.Contains(output, "keygen") {
		t.Errorf("Expected keygen entries to be filtered, got: %s", output)
	}
	if strings.Count(output, "open") != 2 {
		t.Errorf("Expected 2 open entries, got: %s", output)
	}
}
