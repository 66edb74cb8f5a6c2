package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/ui"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// FormatPaths formats paths as an indented list, relative to base when possible.
func FormatPaths(paths []string, base string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		if base != "" {
			if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidName reports whether name can prefix artifact file names.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ParseOffsets parses a comma-separated list of non-negative block offsets.
func ParseOffsets(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid offset %q", kerrors.ErrMalformedInput, p)
		}
		out = append(out, n)
	}
	return out, nil
}
