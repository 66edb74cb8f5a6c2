package workflows

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// UnlockOptions configures the unlock workflow.
type UnlockOptions struct {
	Settings configs.Settings

	// NonceSource supplies the nonce for the new artifact. Required.
	NonceSource secrets.NonceSource
}

// UnlockResult contains the outcome of an unlock operation.
type UnlockResult struct {
	// Path is the artifact that was written.
	Path string

	Nonce      [secrets.NonceSize]byte
	Ciphertext []byte

	// Index is the store index after the operation, which is also the
	// artifact's index.
	Index int

	NonceMode configs.NonceMode
}

// Unlock emits the next unlock code.
//
// The register produces one block, which is encrypted under a nonce from
// opts.NonceSource and written to <name>.<index+1>.enc as nonce || ciphertext.
// The store is then saved with the advanced register and index. If the
// store cannot be saved the artifact is removed again, so a call either
// writes both or neither.
//
// Returns ErrConfigMissing if no store exists.
// Returns ErrArtifactExists if the next artifact is already on disk.
func Unlock(ctx context.Context, opts UnlockOptions) (*UnlockResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.NonceSource == nil {
		return nil, fmt.Errorf("%w: no nonce source configured", kerrors.ErrMalformedInput)
	}

	cfg, err := configs.Load(opts.Settings)
	if err != nil {
		return nil, err
	}
	c, err := secrets.CipherFor(cfg.Suite)
	if err != nil {
		return nil, err
	}
	reg, err := register(cfg)
	if err != nil {
		return nil, err
	}

	nonce, err := opts.NonceSource.Nonce()
	if err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	ciphertext, err := sealBlock(c, cfg.Key, nonce, reg)
	if err != nil {
		return nil, err
	}

	next := cfg.Clone()
	next.Index++
	next.State = reg.State()

	path := opts.Settings.Path(secrets.ArtifactName(cfg.Name, next.Index))
	if err := secrets.WriteArtifact(path, &secrets.Artifact{Nonce: nonce, Ciphertext: ciphertext}); err != nil {
		return nil, err
	}
	if err := configs.Save(opts.Settings, next); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	entry := audit.ForConfig(audit.OpOpen, next)
	entry.Files = []string{path}
	entry.Nonce = hex.EncodeToString(nonce[:])
	entry.NonceMode = string(next.NonceMode)
	audit.Log(opts.Settings, entry)

	return &UnlockResult{
		Path:       path,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Index:      next.Index,
		NonceMode:  next.NonceMode,
	}, nil
}
