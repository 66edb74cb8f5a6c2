package secrets

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
)

// NonceSize is the nonce length of every artifact.
const NonceSize = 8

// DefaultFixedNonce is the value returned by the insecure fixed source.
const DefaultFixedNonce uint64 = 4

// NonceSource supplies nonces for unlock codes.
type NonceSource interface {
	Nonce() ([NonceSize]byte, error)
}

// RandomNonce reads nonces from Reader, crypto/rand when nil.
type RandomNonce struct {
	Reader io.Reader
}

func (r RandomNonce) Nonce() ([NonceSize]byte, error) {
	var n [NonceSize]byte
	reader := r.Reader
	if reader == nil {
		reader = rand.Reader
	}
	if _, err := io.ReadFull(reader, n[:]); err != nil {
		return n, fmt.Errorf("failed to read nonce: %w", err)
	}
	return n, nil
}

// InsecureFixedNonce returns Value, little endian, on every call. Every
// unlock code it protects shares one keystream.
type InsecureFixedNonce struct {
	Value uint64
}

func (f InsecureFixedNonce) Nonce() ([NonceSize]byte, error) {
	var n [NonceSize]byte
	binary.LittleEndian.PutUint64(n[:], f.Value)
	return n, nil
}

// NonceSourceFor returns the source for a stored nonce mode.
func NonceSourceFor(mode configs.NonceMode) (NonceSource, error) {
	switch mode {
	case configs.NonceRandom:
		return RandomNonce{}, nil
	case configs.NonceInsecureFixed:
		return InsecureFixedNonce{Value: DefaultFixedNonce}, nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownNonceMode, mode)
	}
}
