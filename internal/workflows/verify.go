package workflows

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// VerifyOptions configures the verify workflow.
type VerifyOptions struct {
	Settings configs.Settings

	// Artifact is the challenge artifact to check.
	Artifact string

	// Block is the 1-based challenge number the artifact claims to be.
	// Defaults to DefaultChallengeCount.
	Block int
}

// VerifyResult contains the outcome of a verify operation.
type VerifyResult struct {
	Path  string
	Block int
	Nonce [secrets.NonceSize]byte

	// Expected is the ciphertext the store produces for Block.
	Expected []byte

	Match bool
}

// Verify checks a challenge artifact against the protocol store.
//
// The store regenerates challenge Block under the artifact's nonce, the
// same way CreateChallenges does, and the ciphertexts are compared. Verify
// must run against the store the challenges were created from.
//
// Returns ErrVerificationFailed with a populated result on mismatch.
func Verify(ctx context.Context, opts VerifyOptions) (*VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Artifact == "" {
		return nil, fmt.Errorf("%w: no artifact to verify", kerrors.ErrMalformedInput)
	}
	block := opts.Block
	if block == 0 {
		block = DefaultChallengeCount
	}
	if block < 1 {
		return nil, fmt.Errorf("%w: challenge block %d", kerrors.ErrMalformedInput, block)
	}

	cfg, err := configs.Load(opts.Settings)
	if err != nil {
		return nil, err
	}
	path := opts.Settings.Path(opts.Artifact)
	artifact, err := secrets.ReadArtifact(path, secrets.CodeSize)
	if err != nil {
		return nil, err
	}

	blocks, err := challengeBlocks(cfg, artifact.Nonce, block, 1)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		Path:     path,
		Block:    block,
		Nonce:    artifact.Nonce,
		Expected: blocks[0],
		Match:    subtle.ConstantTimeCompare(blocks[0], artifact.Ciphertext) == 1,
	}

	entry := audit.ForConfig(audit.OpVerify, cfg)
	entry.Files = []string{path}
	entry.Nonce = hex.EncodeToString(artifact.Nonce[:])
	entry.Result = "pass"
	if !result.Match {
		entry.Result = "fail"
	}
	audit.Log(opts.Settings, entry)

	if !result.Match {
		return result, fmt.Errorf("%w: %s is not challenge %d", kerrors.ErrVerificationFailed, path, block)
	}
	return result, nil
}
