package configs

import (
	"bytes"
	"crypto/rand"
	"errors"
	"os"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/lfsr"
)

func newTestConfig(t *testing.T) *ProtocolConfig {
	t.Helper()
	cfg, err := GenerateKey(DefaultName, SuiteAESCTR, NonceInsecureFixed, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return cfg
}

func TestGenerateKey(t *testing.T) {
	cfg := newTestConfig(t)

	if len(cfg.Key) != KeySize {
		t.Errorf("Expected %d key bytes, got %d", KeySize, len(cfg.Key))
	}
	if len(cfg.State) != lfsr.Size {
		t.Errorf("Expected %d state bits, got %d", lfsr.Size, len(cfg.State))
	}
	if cfg.Index != 0 {
		t.Errorf("Expected index 0, got %d", cfg.Index)
	}
	if cfg.KeyID == "" {
		t.Error("Expected a key ID")
	}
}

func TestGenerateKeyShortRandomness(t *testing.T) {
	_, err := GenerateKey(DefaultName, SuiteAESCTR, NonceRandom, bytes.NewReader(make([]byte, 5)))
	if err == nil {
		t.Fatal("Expected error when randomness runs out")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := Settings{Dir: t.TempDir()}
	cfg := newTestConfig(t)
	cfg.Index = 7
	cfg.Suite = SuiteChaCha20

	if err := Save(s, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(s)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !bytes.Equal(loaded.Key, cfg.Key) {
		t.Errorf("Expected key %x, got %x", cfg.Key, loaded.Key)
	}
	if !bytes.Equal(loaded.State, cfg.State) {
		t.Errorf("Expected state %v, got %v", cfg.State, loaded.State)
	}
	if loaded.Index != 7 || loaded.Name != cfg.Name || loaded.KeyID != cfg.KeyID {
		t.Errorf("Expected %+v, got %+v", cfg, loaded)
	}
	if loaded.Suite != SuiteChaCha20 || loaded.NonceMode != NonceInsecureFixed {
		t.Errorf("Expected suite and nonce mode to survive, got %q/%q", loaded.Suite, loaded.NonceMode)
	}
	if !loaded.CreatedAt.Equal(cfg.CreatedAt) {
		t.Errorf("Expected created_at %v, got %v", cfg.CreatedAt, loaded.CreatedAt)
	}
}

func TestStoreKeyIsHex(t *testing.T) {
	s := Settings{Dir: t.TempDir()}
	cfg := newTestConfig(t)
	cfg.Key = []byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	if err := Save(s, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(s.StorePath())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(raw), `key = "deadbeef000102030405060708090a0b"`) {
		t.Errorf("Expected hex encoded key in store, got:\n%s", raw)
	}
}

func TestLoadMissingStore(t *testing.T) {
	_, err := Load(Settings{Dir: t.TempDir()})
	if !errors.Is(err, kerrors.ErrConfigMissing) {
		t.Fatalf("Expected ErrConfigMissing, got %v", err)
	}
}

func TestLoadTruncatedStore(t *testing.T) {
	s := Settings{Dir: t.TempDir()}
	if err := os.WriteFile(s.StorePath(), []byte("name = \"car\"\nstate = [1, 0,"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Load(s)
	if !errors.Is(err, kerrors.ErrConfigMissing) {
		t.Fatalf("Expected ErrConfigMissing, got %v", err)
	}
}

func TestLoadCorruptFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"bad hex", func(s string) string { return strings.Replace(s, `key = "`, `key = "zz`, 1) }},
		{"extra state bit", func(s string) string { return strings.Replace(s, "state = [", "state = [0, ", 1) }},
		{"non-binary bit", func(s string) string { return strings.Replace(s, "state = [", "state = [2, ", 1) }},
		{"negative index", func(s string) string { return strings.Replace(s, "index = 0", "index = -1", 1) }},
		{"unknown suite", func(s string) string { return strings.Replace(s, `"aes-128-ctr"`, `"rot13"`, 1) }},
		{"unknown nonce mode", func(s string) string { return strings.Replace(s, `"insecure-fixed"`, `"dice"`, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{Dir: t.TempDir()}
			if err := Save(s, newTestConfig(t)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			raw, err := os.ReadFile(s.StorePath())
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if err := os.WriteFile(s.StorePath(), []byte(tt.mutate(string(raw))), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			_, err = Load(s)
			if !errors.Is(err, kerrors.ErrMalformedInput) {
				t.Fatalf("Expected ErrMalformedInput, got %v", err)
			}
		})
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	s := Settings{Dir: t.TempDir()}
	cfg := newTestConfig(t)
	cfg.Key = cfg.Key[:8]

	err := Save(s, cfg)
	if !errors.Is(err, kerrors.ErrInvalidKeyLength) {
		t.Fatalf("Expected ErrInvalidKeyLength, got %v", err)
	}
	if Exists(s) {
		t.Error("Expected no store to be written")
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := newTestConfig(t)
	c := cfg.Clone()
	c.State[0] ^= 1
	c.Key[0] ^= 1
	if c.State[0] == cfg.State[0] || c.Key[0] == cfg.Key[0] {
		t.Error("Expected Clone to copy key and state")
	}
}

func TestSettingsPath(t *testing.T) {
	s, err := NewSettings(t.TempDir())
	if err != nil {
		t.Fatalf("NewSettings failed: %v", err)
	}
	if got := s.Path("car.1.enc"); !strings.HasPrefix(got, s.Dir) {
		t.Errorf("Expected %q under %q", got, s.Dir)
	}
	if got := s.Path("/abs/car.1.enc"); got != "/abs/car.1.enc" {
		t.Errorf("Expected absolute path unchanged, got %q", got)
	}
}
