package cmd

import (
	"context"

	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/utils"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	challengeCount int
	challengeForce bool
)

func init() {
	challengeCmd.Flags().IntVar(&challengeCount, "count", workflows.DefaultChallengeCount, "number of challenge artifacts")
	challengeCmd.Flags().BoolVarP(&challengeForce, "force", "f", false, "remove existing challenge artifacts first")
}

func resetChallengeCommandState() {
	challengeCount = workflows.DefaultChallengeCount
	challengeForce = false
}

var challengeCmd = &cobra.Command{
	Use:     "challenge [artifact]",
	Aliases: []string{"e"},
	Short:   "Creates challenge artifacts under an existing artifact's nonce",
	Long: `Reads the nonce from an artifact (default: the first unlock code), rebuilds the
register from the store, discards one block and writes the following blocks as
challenge.1.enc, challenge.2.enc, ... all under that nonce. The store is not
modified.

Examples:
  carlock challenge
  carlock challenge car.2.enc --count 4
  carlock challenge --force`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeArtifacts,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting challenge command")
		spinner, cleanup := startSpinner("Creating challenges...")
		defer cleanup()

		opts := workflows.ChallengeOptions{
			Settings: settings,
			Count:    challengeCount,
			Force:    challengeForce,
		}
		if len(args) == 1 {
			opts.Artifact = args[0]
		}

		result, err := workflows.CreateChallenges(context.Background(), opts)
		if err != nil {
			return reportError(spinner, err)
		}
		if len(result.Removed) > 0 {
			Logger.Infof("Removed %d previous challenge artifacts", len(result.Removed))
		}

		spinner.FinalMSG = ui.Ok() + " Challenges created under nonce " + ui.Bytes(result.Nonce[:]) +
			" from " + ui.Path.Sprint(displayPath(result.Source)) +
			utils.FormatPaths(result.Files, settings.Dir) +
			ui.Hint() + " Run " + ui.Code.Sprint("carlock solve") + " to predict a challenge from the others"
		return nil
	},
}
