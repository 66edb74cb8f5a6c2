package configs

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PolarWolf314/carlock/internal/bits"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/lfsr"
	"github.com/google/uuid"
)

// KeySize is the length of the protocol key in bytes.
const KeySize = 16

// DefaultName prefixes unlock-code artifacts.
const DefaultName = "car"

// Suite names the counter-mode cipher protecting unlock codes.
type Suite string

const (
	SuiteAESCTR   Suite = "aes-128-ctr"
	SuiteChaCha20 Suite = "chacha20"
)

// Suites lists the supported cipher suites.
var Suites = []Suite{SuiteAESCTR, SuiteChaCha20}

// Valid reports whether s is a supported suite.
func (s Suite) Valid() bool {
	for _, known := range Suites {
		if s == known {
			return true
		}
	}
	return false
}

// NonceMode names the nonce source used for unlock codes.
type NonceMode string

const (
	// NonceRandom draws every nonce from crypto/rand.
	NonceRandom NonceMode = "random"

	// NonceInsecureFixed reuses one constant nonce for every unlock code.
	// It reproduces the protocol flaw the challenge exploits.
	NonceInsecureFixed NonceMode = "insecure-fixed"
)

// NonceModes lists the supported nonce modes.
var NonceModes = []NonceMode{NonceInsecureFixed, NonceRandom}

// Valid reports whether m is a supported nonce mode.
func (m NonceMode) Valid() bool {
	for _, known := range NonceModes {
		if m == known {
			return true
		}
	}
	return false
}

// ProtocolConfig is the persisted protocol state.
type ProtocolConfig struct {
	Name      string
	KeyID     string
	Key       []byte
	State     []uint8
	Index     int
	Suite     Suite
	NonceMode NonceMode
	CreatedAt time.Time
}

// record is the on-disk form of ProtocolConfig.
type record struct {
	Name      string    `toml:"name"`
	KeyID     string    `toml:"key_id"`
	Key       string    `toml:"key"`
	State     []int     `toml:"state"`
	Index     int       `toml:"index"`
	Suite     string    `toml:"suite"`
	NonceMode string    `toml:"nonce_mode"`
	CreatedAt time.Time `toml:"created_at"`
}

// Validate checks the invariants of a protocol record.
func (c *ProtocolConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty protocol name", kerrors.ErrMalformedInput)
	}
	if len(c.Key) != KeySize {
		return fmt.Errorf("%w: %w: expected %d bytes, got %d",
			kerrors.ErrMalformedInput, kerrors.ErrInvalidKeyLength, KeySize, len(c.Key))
	}
	if len(c.State) != lfsr.Size {
		return fmt.Errorf("%w: expected %d state bits, got %d", kerrors.ErrMalformedInput, lfsr.Size, len(c.State))
	}
	for i, b := range c.State {
		if b > 1 {
			return fmt.Errorf("%w: state[%d] = %d is not a bit", kerrors.ErrMalformedInput, i, b)
		}
	}
	if c.Index < 0 {
		return fmt.Errorf("%w: negative index %d", kerrors.ErrMalformedInput, c.Index)
	}
	if !c.Suite.Valid() {
		return fmt.Errorf("%w: %w %q", kerrors.ErrMalformedInput, kerrors.ErrUnknownSuite, c.Suite)
	}
	if !c.NonceMode.Valid() {
		return fmt.Errorf("%w: %w %q", kerrors.ErrMalformedInput, kerrors.ErrUnknownNonceMode, c.NonceMode)
	}
	return nil
}

// Clone returns a deep copy.
func (c *ProtocolConfig) Clone() *ProtocolConfig {
	out := *c
	out.Key = append([]byte(nil), c.Key...)
	out.State = append([]uint8(nil), c.State...)
	return &out
}

// Exists reports whether a key store is present.
func Exists(s Settings) bool {
	_, err := os.Stat(s.StorePath())
	return err == nil
}

// Load reads and validates the key store.
//
// Returns ErrConfigMissing if the store is absent or cannot be decoded and
// ErrMalformedInput if a field violates an invariant.
func Load(s Settings) (*ProtocolConfig, error) {
	path := s.StorePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrConfigMissing, err)
	}

	var rec record
	if err := LoadTOML(path, &rec); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", kerrors.ErrConfigMissing, path, err)
	}

	key, err := hex.DecodeString(rec.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not hex: %v", kerrors.ErrMalformedInput, err)
	}

	state := make([]uint8, len(rec.State))
	for i, b := range rec.State {
		if b != 0 && b != 1 {
			return nil, fmt.Errorf("%w: state[%d] = %d is not a bit", kerrors.ErrMalformedInput, i, b)
		}
		state[i] = uint8(b)
	}

	cfg := &ProtocolConfig{
		Name:      rec.Name,
		KeyID:     rec.KeyID,
		Key:       key,
		State:     state,
		Index:     rec.Index,
		Suite:     Suite(rec.Suite),
		NonceMode: NonceMode(rec.NonceMode),
		CreatedAt: rec.CreatedAt,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save overwrites the key store with cfg.
func Save(s Settings, cfg *ProtocolConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	state := make([]int, len(cfg.State))
	for i, b := range cfg.State {
		state[i] = int(b)
	}
	rec := record{
		Name:      cfg.Name,
		KeyID:     cfg.KeyID,
		Key:       hex.EncodeToString(cfg.Key),
		State:     state,
		Index:     cfg.Index,
		Suite:     string(cfg.Suite),
		NonceMode: string(cfg.NonceMode),
		CreatedAt: cfg.CreatedAt,
	}

	if err := SaveTOML(s.StorePath(), rec); err != nil {
		return fmt.Errorf("%w: failed to save key store: %v", kerrors.ErrIOFailure, err)
	}
	return nil
}

// NewKeyID generates a new key identifier.
func NewKeyID() string {
	return uuid.New().String()
}

// GenerateKey creates a fresh protocol record with a random key and
// register drawn from rng.
func GenerateKey(name string, suite Suite, mode NonceMode, rng io.Reader) (*ProtocolConfig, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rng, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	seed := make([]byte, lfsr.Size/8)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, fmt.Errorf("failed to generate register state: %w", err)
	}

	cfg := &ProtocolConfig{
		Name:      name,
		KeyID:     NewKeyID(),
		Key:       key,
		State:     bits.FromBytes(seed),
		Index:     0,
		Suite:     suite,
		NonceMode: mode,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
