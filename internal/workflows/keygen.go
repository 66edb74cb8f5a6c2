package workflows

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/utils"
)

// KeyGenOptions configures the keygen workflow.
type KeyGenOptions struct {
	Settings configs.Settings

	// Name prefixes the unlock code artifacts. Defaults to "car".
	Name string

	// Suite selects the counter-mode cipher. Defaults to AES-128-CTR.
	Suite configs.Suite

	// NonceMode is stored and decides the nonce source for every open.
	// It must be set explicitly.
	NonceMode configs.NonceMode

	// Force overwrites an existing store.
	Force bool

	// Rand supplies the key and register bits. Defaults to crypto/rand.
	Rand io.Reader
}

// KeyGenResult contains the outcome of a keygen operation.
type KeyGenResult struct {
	Config    *configs.ProtocolConfig
	StorePath string

	// Replaced is true when an existing store was overwritten.
	Replaced bool
}

// KeyGen creates a new protocol store with a random key and register.
//
// Returns ErrConfigExists if a store is present and Force is not set.
// Returns ErrUnknownSuite or ErrUnknownNonceMode for unsupported choices.
func KeyGen(ctx context.Context, opts KeyGenOptions) (*KeyGenResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = configs.DefaultName
	}
	if !utils.IsValidName(name) {
		return nil, fmt.Errorf("%w: invalid protocol name %q", kerrors.ErrMalformedInput, name)
	}
	suite := opts.Suite
	if suite == "" {
		suite = configs.SuiteAESCTR
	}
	if !suite.Valid() {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownSuite, suite)
	}
	if !opts.NonceMode.Valid() {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownNonceMode, opts.NonceMode)
	}

	exists := configs.Exists(opts.Settings)
	if exists && !opts.Force {
		return nil, kerrors.ErrConfigExists
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.Reader
	}
	cfg, err := configs.GenerateKey(name, suite, opts.NonceMode, rng)
	if err != nil {
		return nil, err
	}
	if err := configs.Save(opts.Settings, cfg); err != nil {
		return nil, err
	}

	entry := audit.ForConfig(audit.OpKeyGen, cfg)
	entry.Suite = string(cfg.Suite)
	entry.NonceMode = string(cfg.NonceMode)
	audit.Log(opts.Settings, entry)

	return &KeyGenResult{
		Config:    cfg,
		StorePath: opts.Settings.StorePath(),
		Replaced:  exists,
	}, nil
}
