package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// StoreFileName is the key store inside Settings.Dir.
	StoreFileName = "key_config.toml"

	// AuditFileName is the JSON-lines audit log inside Settings.Dir.
	AuditFileName = "audit.jsonl"
)

// Settings locates the files of one protocol instance.
type Settings struct {
	Dir string
}

// NewSettings resolves dir to an absolute path. An empty dir means the
// current working directory.
func NewSettings(dir string) (Settings, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Settings{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return Settings{Dir: abs}, nil
}

// StorePath returns the path of the key store.
func (s Settings) StorePath() string {
	return filepath.Join(s.Dir, StoreFileName)
}

// AuditPath returns the path of the audit log.
func (s Settings) AuditPath() string {
	return filepath.Join(s.Dir, AuditFileName)
}

// Path resolves a file name relative to Dir. Absolute names are returned unchanged.
func (s Settings) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}
