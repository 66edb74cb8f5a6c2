package workflows

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/carlock/internal/attack"
	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/lfsr"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// DefaultSolveInputs are the observed challenges used when none are given.
var DefaultSolveInputs = []string{
	secrets.ArtifactName(secrets.ChallengeName, 1),
	secrets.ArtifactName(secrets.ChallengeName, 2),
}

// SolveOptions configures the solve workflow.
type SolveOptions struct {
	Settings configs.Settings

	// Inputs are artifact names, comma lists or globs. Defaults to
	// DefaultSolveInputs.
	Inputs []string

	// Offsets gives the block offset of each input. Defaults to 0, 1, 2, ...
	Offsets []int

	// Target is the block offset to predict. Defaults to the last offset + 1.
	Target *int

	// Output is the artifact to write. When empty it is derived from the
	// first input, which must be a challenge: challenge.1.enc at offset 0
	// with target 2 gives challenge.3.enc. A derived output replaces an
	// existing challenge of that name.
	Output string

	// Taps is the public feedback mask. Defaults to lfsr.DefaultTaps.
	Taps []uint8

	// Force replaces an existing explicit output artifact.
	Force bool
}

// SolveResult contains the outcome of a solve operation.
type SolveResult struct {
	Inputs  []string
	Offsets []int
	Target  int

	// Output is the predicted artifact that was written.
	Output     string
	Nonce      [secrets.NonceSize]byte
	Ciphertext []byte

	// Rank is the number of independent relations found.
	Rank int

	// Recovered is true when the full register state was pinned down.
	Recovered bool
}

// Solve predicts an unseen artifact from artifacts that share a nonce.
//
// Counter-mode keystream cancels when two ciphertexts under the same key and
// nonce are XORed, leaving relations between register blocks at known
// offsets. Those relations are solved over GF(2) and the target block is
// emitted under the shared nonce. No key is needed.
//
// Returns ErrArtifactExists if an explicit output exists and Force is not set.
// Returns ErrMalformedInput if no output is given and the inputs are not
// challenges.
// Returns ErrNonceMismatch if the inputs use different nonces.
// Returns ErrInsufficientData unless the inputs pin down the register state.
// Returns ErrInconsistentObservations if the inputs contradict each other.
func Solve(ctx context.Context, opts SolveOptions) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patterns := opts.Inputs
	if len(patterns) == 0 {
		patterns = DefaultSolveInputs
	}
	inputs, err := secrets.ResolveArtifacts(patterns, opts.Settings.Dir)
	if err != nil {
		return nil, err
	}

	offsets := opts.Offsets
	if len(offsets) == 0 {
		offsets = make([]int, len(inputs))
		for i := range offsets {
			offsets[i] = i
		}
	}
	if len(offsets) != len(inputs) {
		return nil, fmt.Errorf("%w: %d offsets for %d inputs", kerrors.ErrMalformedInput, len(offsets), len(inputs))
	}

	var nonce [secrets.NonceSize]byte
	obs := make([]attack.Observation, len(inputs))
	for i, path := range inputs {
		a, err := secrets.ReadArtifact(path, secrets.CodeSize)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			nonce = a.Nonce
		} else if a.Nonce != nonce {
			return nil, fmt.Errorf("%w: %s uses %s, %s uses %s", kerrors.ErrNonceMismatch,
				filepath.Base(inputs[0]), hex.EncodeToString(nonce[:]),
				filepath.Base(path), hex.EncodeToString(a.Nonce[:]))
		}
		obs[i] = attack.Observation{Offset: offsets[i], Ciphertext: a.Ciphertext}
	}

	target := maxOffset(offsets) + 1
	if opts.Target != nil {
		target = *opts.Target
	}

	output := opts.Output
	replace := opts.Force
	if output == "" {
		output, err = derivedOutput(inputs[0], offsets[0], target)
		if err != nil {
			return nil, err
		}
		replace = true
	}
	output = opts.Settings.Path(output)

	taps := opts.Taps
	if taps == nil {
		taps = lfsr.DefaultTaps
	}
	rec, err := attack.Recover(taps, obs)
	if err != nil {
		return nil, err
	}
	if !rec.Unique() {
		return nil, fmt.Errorf("%w: rank %d of %d, register state not determined",
			kerrors.ErrInsufficientData, rec.Rank, lfsr.Size)
	}
	predicted, err := rec.Predict(target)
	if err != nil {
		return nil, err
	}

	a := &secrets.Artifact{Nonce: nonce, Ciphertext: predicted}
	if replace {
		err = secrets.ReplaceArtifact(output, a)
	} else {
		err = secrets.WriteArtifact(output, a)
	}
	if err != nil {
		return nil, err
	}

	audit.Log(opts.Settings, audit.Entry{
		Operation: audit.OpSolve,
		Files:     append(append([]string(nil), inputs...), output),
		Nonce:     hex.EncodeToString(nonce[:]),
	})

	return &SolveResult{
		Inputs:     inputs,
		Offsets:    offsets,
		Target:     target,
		Output:     output,
		Nonce:      nonce,
		Ciphertext: predicted,
		Rank:       rec.Rank,
		Recovered:  rec.Unique(),
	}, nil
}

func maxOffset(offsets []int) int {
	m := offsets[0]
	for _, o := range offsets[1:] {
		if o > m {
			m = o
		}
	}
	return m
}

// derivedOutput names the challenge at target in the sequence of first,
// which sits at offset. Other sequences need an explicit output so a
// prediction never lands on a name the protocol will write later.
func derivedOutput(first string, offset, target int) (string, error) {
	index, ok := secrets.ArtifactIndex(first)
	if !ok || index+target-offset < 0 {
		return "", fmt.Errorf("%w: cannot derive an output name from %s", kerrors.ErrMalformedInput, filepath.Base(first))
	}
	base := strings.TrimSuffix(filepath.Base(first), secrets.ArtifactExt)
	prefix := base[:strings.LastIndexByte(base, '.')]
	if prefix != secrets.ChallengeName {
		return "", fmt.Errorf("%w: %s is not a challenge, an output name is required",
			kerrors.ErrMalformedInput, filepath.Base(first))
	}
	name := secrets.ArtifactName(prefix, index+target-offset)
	return filepath.Join(filepath.Dir(first), name), nil
}
