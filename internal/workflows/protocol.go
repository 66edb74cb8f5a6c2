package workflows

import (
	"fmt"

	"github.com/PolarWolf314/carlock/internal/bits"
	"github.com/PolarWolf314/carlock/internal/configs"
	"github.com/PolarWolf314/carlock/internal/lfsr"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// register rebuilds the protocol LFSR from the stored state.
func register(cfg *configs.ProtocolConfig) (*lfsr.LFSR, error) {
	return lfsr.New(lfsr.Size, cfg.State, lfsr.DefaultTaps)
}

// sealBlock encrypts the next block of reg under nonce.
func sealBlock(c secrets.Cipher, key []byte, nonce [secrets.NonceSize]byte, reg *lfsr.LFSR) ([]byte, error) {
	code, err := bits.ToBytes(reg.Output(lfsr.Size))
	if err != nil {
		return nil, err
	}
	return c.Encrypt(key, nonce[:], code)
}

// challengeBlocks returns challenge blocks first..first+count-1 (1-based)
// derived from the stored register under nonce. Block 1 follows the block
// skipped after the stored state.
func challengeBlocks(cfg *configs.ProtocolConfig, nonce [secrets.NonceSize]byte, first, count int) ([][]byte, error) {
	if first < 1 || count < 1 {
		return nil, fmt.Errorf("invalid challenge range %d+%d", first, count)
	}
	c, err := secrets.CipherFor(cfg.Suite)
	if err != nil {
		return nil, err
	}
	reg, err := register(cfg)
	if err != nil {
		return nil, err
	}
	reg.Skip(lfsr.Size * first)

	out := make([][]byte, count)
	for i := range out {
		if out[i], err = sealBlock(c, cfg.Key, nonce, reg); err != nil {
			return nil, err
		}
	}
	return out, nil
}
