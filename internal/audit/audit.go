package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/PolarWolf314/carlock/internal/configs"
)

// TimestampFormat is the layout of Entry.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Operation names recorded in Entry.Operation.
const (
	OpKeyGen    = "keygen"
	OpOpen      = "open"
	OpChallenge = "challenge"
	OpSolve     = "solve"
	OpVerify    = "verify"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	Operation string `json:"op"`
	Name      string `json:"name,omitempty"`
	KeyID     string `json:"key_id,omitempty"`

	// Optional fields depending on operation.
	Index     *int     `json:"index,omitempty"`      // Store index after the operation.
	Files     []string `json:"files,omitempty"`      // Artifacts written or checked.
	Nonce     string   `json:"nonce,omitempty"`      // Hex nonce of the artifacts.
	Suite     string   `json:"suite,omitempty"`      // For keygen.
	NonceMode string   `json:"nonce_mode,omitempty"` // For keygen and open.
	Result    string   `json:"result,omitempty"`     // For verify (pass/fail).
}

// ForConfig returns an entry populated from the protocol record.
func ForConfig(op string, cfg *configs.ProtocolConfig) Entry {
	entry := Entry{Operation: op}
	if cfg == nil {
		return entry
	}
	index := cfg.Index
	entry.Name = cfg.Name
	entry.KeyID = cfg.KeyID
	entry.Index = &index
	return entry
}

// Log appends an entry to the audit log in s.Dir.
func Log(s configs.Settings, entry Entry) {
	if s.Dir == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	// #nosec G306 -- the audit log holds no key material.
	f, err := os.OpenFile(s.AuditPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(s configs.Settings) ([]Entry, error) {
	data, err := os.ReadFile(s.AuditPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// Filter keeps entries whose operation is op (all when op is empty) and
// returns at most the last limit of them (all when limit <= 0).
func Filter(entries []Entry, op string, limit int) []Entry {
	var out []Entry
	for _, e := range entries {
		if op == "" || e.Operation == op {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
