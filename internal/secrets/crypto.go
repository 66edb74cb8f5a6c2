package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

// Cipher encrypts and decrypts in counter mode.
type Cipher interface {
	Encrypt(key, nonce, plaintext []byte) ([]byte, error)
	Decrypt(key, nonce, ciphertext []byte) ([]byte, error)
}

// CipherFor returns the cipher implementing suite.
func CipherFor(suite configs.Suite) (Cipher, error) {
	switch suite {
	case configs.SuiteAESCTR:
		return AESCTR{}, nil
	case configs.SuiteChaCha20:
		return ChaCha20{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownSuite, suite)
	}
}

// Keystream returns the first n keystream bytes of c under (key, nonce).
func Keystream(c Cipher, key, nonce []byte, n int) ([]byte, error) {
	return c.Encrypt(key, nonce, make([]byte, n))
}

func checkParams(key, nonce []byte) error {
	if len(key) != configs.KeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidKeyLength, configs.KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return fmt.Errorf("%w: expected %d nonce bytes, got %d", kerrors.ErrMalformedInput, NonceSize, len(nonce))
	}
	return nil
}

// AESCTR is AES-128 in counter mode with an 8-byte nonce and an 8-byte
// big-endian block counter starting at zero.
type AESCTR struct{}

func (AESCTR) stream(key, nonce []byte) (cipher.Stream, error) {
	if err := checkParams(key, nonce); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, nonce)
	return cipher.NewCTR(block, iv), nil
}

// Encrypt XORs plaintext with the keystream.
func (c AESCTR) Encrypt(key, nonce, plaintext []byte) ([]byte, error) {
	s, err := c.stream(key, nonce)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	s.XORKeyStream(out, plaintext)
	return out, nil
}

// Decrypt is the same operation as Encrypt.
func (c AESCTR) Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	return c.Encrypt(key, nonce, ciphertext)
}

const chachaKeyInfo = "carlock chacha20 key"

// ChaCha20 is an optional suite built on the ChaCha20 stream cipher. It is not
// a 128-bit block cipher in counter mode, so stores that must match the
// reference protocol use AESCTR. The 32-byte cipher key is derived from the
// protocol key with HKDF-SHA256 and the nonce is zero-padded on the left to 12
// bytes. Reusing a nonce leaks the keystream exactly as it does for AESCTR.
type ChaCha20 struct{}

func (ChaCha20) stream(key, nonce []byte) (*chacha20.Cipher, error) {
	if err := checkParams(key, nonce); err != nil {
		return nil, err
	}
	derived := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(chachaKeyInfo)), derived); err != nil {
		return nil, fmt.Errorf("failed to derive ChaCha20 key: %w", err)
	}
	n := make([]byte, chacha20.NonceSize)
	copy(n[chacha20.NonceSize-NonceSize:], nonce)
	return chacha20.NewUnauthenticatedCipher(derived, n)
}

// Encrypt XORs plaintext with the keystream.
func (c ChaCha20) Encrypt(key, nonce, plaintext []byte) ([]byte, error) {
	s, err := c.stream(key, nonce)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	s.XORKeyStream(out, plaintext)
	return out, nil
}

// Decrypt is the same operation as Encrypt.
func (c ChaCha20) Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	return c.Encrypt(key, nonce, ciphertext)
}
