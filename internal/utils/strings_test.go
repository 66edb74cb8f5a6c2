package utils

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
)

func TestIsValidName(t *testing.T) {
	tests := map[string]bool{
		"car":         true,
		"car-2":       true,
		"garage_door": true,
		"":            false,
		"-car":        false,
		"car.door":    false,
		"../car":      false,
		"car door":    false,
	}
	for name, want := range tests {
		if got := IsValidName(name); got != want {
			t.Errorf("IsValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseOffsets(t *testing.T) {
	got, err := ParseOffsets("0, 1,4")
	if err != nil {
		t.Fatalf("ParseOffsets failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 4}) {
		t.Errorf("Expected [0 1 4], got %v", got)
	}

	if got, err := ParseOffsets(""); err != nil || got != nil {
		t.Errorf("Expected nil for empty input, got %v, %v", got, err)
	}

	for _, bad := range []string{"a", "1,-2", "1,,2"} {
		if _, err := ParseOffsets(bad); !errors.Is(err, kerrors.ErrMalformedInput) {
			t.Errorf("ParseOffsets(%q): expected ErrMalformedInput, got %v", bad, err)
		}
	}
}

func TestFormatPaths(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	got := FormatPaths([]string{"/work/car.1.enc", "/elsewhere/x.enc"}, "/work")
	if !strings.Contains(got, "    - car.1.enc\n") {
		t.Errorf("Expected relative path, got %q", got)
	}
	if !strings.Contains(got, "    - /elsewhere/x.enc\n") {
		t.Errorf("Expected absolute path outside base, got %q", got)
	}
}
