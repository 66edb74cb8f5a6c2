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

// DefaultChallengeCount is the number of challenge artifacts written.
const DefaultChallengeCount = 3

// ChallengeOptions configures the challenge workflow.
type ChallengeOptions struct {
	Settings configs.Settings

	// Artifact supplies the nonce. Defaults to the first unlock code,
	// <name>.1.enc.
	Artifact string

	// Count is the number of challenges. Defaults to DefaultChallengeCount.
	Count int

	// Force removes existing challenge artifacts first.
	Force bool
}

// ChallengeResult contains the outcome of a challenge operation.
type ChallengeResult struct {
	// Source is the artifact the nonce was read from.
	Source string

	Nonce [secrets.NonceSize]byte

	// Files lists the challenge artifacts in order.
	Files []string

	// Removed lists challenge artifacts deleted because of Force.
	Removed []string
}

// CreateChallenges writes challenge.1.enc .. challenge.<count>.enc.
//
// The nonce is taken from an existing artifact. The register is rebuilt
// from the store, one block is discarded, and the following blocks are
// encrypted under that nonce. The store is not modified.
//
// Returns ErrConfigMissing if no store exists.
// Returns ErrArtifactExists if a challenge exists and Force is not set;
// nothing is written in that case.
func CreateChallenges(ctx context.Context, opts ChallengeOptions) (*ChallengeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := configs.Load(opts.Settings)
	if err != nil {
		return nil, err
	}

	count := opts.Count
	if count == 0 {
		count = DefaultChallengeCount
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative challenge count %d", kerrors.ErrMalformedInput, count)
	}

	source := opts.Artifact
	if source == "" {
		source = secrets.ArtifactName(cfg.Name, 1)
	}
	source = opts.Settings.Path(source)
	artifact, err := secrets.ReadArtifact(source, secrets.CodeSize)
	if err != nil {
		return nil, err
	}

	result := &ChallengeResult{Source: source, Nonce: artifact.Nonce}

	if opts.Force {
		existing, err := secrets.FindArtifacts(opts.Settings.Dir, secrets.ChallengeName)
		if err != nil {
			return nil, err
		}
		for _, path := range existing {
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("%w: removing %s: %v", kerrors.ErrIOFailure, path, err)
			}
			result.Removed = append(result.Removed, path)
		}
	}

	targets := make([]string, count)
	for i := range targets {
		targets[i] = opts.Settings.Path(secrets.ArtifactName(secrets.ChallengeName, i+1))
		if _, err := os.Stat(targets[i]); err == nil {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrArtifactExists, targets[i])
		}
	}

	blocks, err := challengeBlocks(cfg, artifact.Nonce, 1, count)
	if err != nil {
		return nil, err
	}
	for i, path := range targets {
		if err := secrets.WriteArtifact(path, &secrets.Artifact{Nonce: artifact.Nonce, Ciphertext: blocks[i]}); err != nil {
			for _, written := range result.Files {
				_ = os.Remove(written)
			}
			return nil, err
		}
		result.Files = append(result.Files, path)
	}

	entry := audit.ForConfig(audit.OpChallenge, cfg)
	entry.Files = result.Files
	entry.Nonce = hex.EncodeToString(artifact.Nonce[:])
	audit.Log(opts.Settings, entry)

	return result, nil
}
