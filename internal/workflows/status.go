package workflows

import (
	"context"

	"github.com/PolarWolf314/carlock/internal/configs"
	"github.com/PolarWolf314/carlock/internal/secrets"
)

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Settings configs.Settings
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	Config    *configs.ProtocolConfig
	StorePath string

	// NextArtifact is the file the next open will write.
	NextArtifact string

	// Artifacts lists unlock codes on disk, by index.
	Artifacts []string

	// Challenges lists challenge artifacts on disk, by index.
	Challenges []string
}

// Status summarizes the protocol store and the artifacts next to it.
//
// Returns ErrConfigMissing if no store exists.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := configs.Load(opts.Settings)
	if err != nil {
		return nil, err
	}
	artifacts, err := secrets.FindArtifacts(opts.Settings.Dir, cfg.Name)
	if err != nil {
		return nil, err
	}
	challenges, err := secrets.FindArtifacts(opts.Settings.Dir, secrets.ChallengeName)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Config:       cfg,
		StorePath:    opts.Settings.StorePath(),
		NextArtifact: opts.Settings.Path(secrets.ArtifactName(cfg.Name, cfg.Index+1)),
		Artifacts:    artifacts,
		Challenges:   challenges,
	}, nil
}
