package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/lfsr"
	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ArtifactExt is the extension of every artifact file.
	ArtifactExt = ".enc"

	// ChallengeName prefixes challenge artifacts.
	ChallengeName = "challenge"

	// CodeSize is the ciphertext length of an unlock code or challenge block.
	CodeSize = lfsr.Size / 8
)

// Artifact is a nonce and the ciphertext produced under it.
type Artifact struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Bytes returns the file layout: nonce || ciphertext.
func (a *Artifact) Bytes() []byte {
	out := make([]byte, 0, NonceSize+len(a.Ciphertext))
	out = append(out, a.Nonce[:]...)
	return append(out, a.Ciphertext...)
}

// ParseArtifact splits data into nonce and a ciphertext of payloadSize bytes.
func ParseArtifact(data []byte, payloadSize int) (*Artifact, error) {
	if len(data) != NonceSize+payloadSize {
		return nil, fmt.Errorf("%w: expected %d artifact bytes, got %d",
			kerrors.ErrMalformedInput, NonceSize+payloadSize, len(data))
	}
	a := &Artifact{Ciphertext: append([]byte(nil), data[NonceSize:]...)}
	copy(a.Nonce[:], data[:NonceSize])
	return a, nil
}

// ArtifactName returns the deterministic file name for name and index.
func ArtifactName(name string, index int) string {
	return name + "." + strconv.Itoa(index) + ArtifactExt
}

// ArtifactIndex extracts the index from a file named <name>.<index>.enc.
func ArtifactIndex(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), ArtifactExt)
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || base == filepath.Base(path) {
		return 0, false
	}
	n, err := strconv.Atoi(base[dot+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// WriteArtifact creates path holding a. It never overwrites an existing file.
func WriteArtifact(path string, a *Artifact) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", kerrors.ErrArtifactExists, path)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", kerrors.ErrIOFailure, path, err)
	}

	if _, err := f.Write(a.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: failed to write %s: %v", kerrors.ErrIOFailure, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: failed to close %s: %v", kerrors.ErrIOFailure, path, err)
	}
	return nil
}

// ReplaceArtifact writes a to path, replacing any existing file. The data is
// written to a temporary file in the same directory and renamed over path, so
// the previous artifact survives a failed write.
func ReplaceArtifact(path string, a *Artifact) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file for %s: %v", kerrors.ErrIOFailure, path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(a.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %v", kerrors.ErrIOFailure, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to sync %s: %v", kerrors.ErrIOFailure, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", kerrors.ErrIOFailure, tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("%w: failed to set permissions on %s: %v", kerrors.ErrIOFailure, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", kerrors.ErrIOFailure, path, err)
	}
	return nil
}

// ReadArtifact reads an artifact whose ciphertext is payloadSize bytes.
func ReadArtifact(path string, payloadSize int) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", kerrors.ErrIOFailure, path, err)
	}
	a, err := ParseArtifact(data, payloadSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ResolveArtifacts turns user-provided names, comma-separated lists and
// globs into artifact paths, in argument order. Glob matches are ordered by
// artifact index. Duplicates are dropped.
func ResolveArtifacts(patterns []string, dir string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, arg := range patterns {
		for _, pattern := range strings.Split(arg, ",") {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			resolved, err := resolvePattern(pattern, dir)
			if err != nil {
				return nil, err
			}
			for _, f := range resolved {
				if !seen[f] {
					seen[f] = true
					files = append(files, f)
				}
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoArtifactsFound
	}
	return files, nil
}

func resolvePattern(pattern string, dir string) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(dir, pattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern)
	}

	if _, err := os.Stat(absPattern); err != nil {
		return nil, fmt.Errorf("%w: artifact not found: %s", kerrors.ErrIOFailure, pattern)
	}
	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid glob pattern %q: %v", kerrors.ErrMalformedInput, pattern, err)
	}

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !strings.HasSuffix(m, ArtifactExt) {
			continue
		}
		filtered = append(filtered, m)
	}
	sortByIndex(filtered)
	return filtered, nil
}

// FindArtifacts lists the artifacts named <name>.<index>.enc in dir, by index.
func FindArtifacts(dir, name string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, name+".*"+ArtifactExt))
	if err != nil {
		return nil, fmt.Errorf("%w: listing artifacts: %v", kerrors.ErrIOFailure, err)
	}
	var out []string
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ArtifactExt)
		dot := strings.LastIndexByte(base, '.')
		if dot < 0 || base[:dot] != name {
			continue
		}
		if _, ok := ArtifactIndex(m); ok {
			out = append(out, m)
		}
	}
	sortByIndex(out)
	return out, nil
}

func sortByIndex(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, okA := ArtifactIndex(paths[i])
		b, okB := ArtifactIndex(paths[j])
		if okA && okB && a != b {
			return a < b
		}
		if okA != okB {
			return okA
		}
		return paths[i] < paths[j]
	})
}
