package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var verifyBlock int

func init() {
	verifyCmd.Flags().IntVar(&verifyBlock, "block", workflows.DefaultChallengeCount, "challenge number the artifact claims to be")
}

func resetVerifyCommandState() {
	verifyBlock = workflows.DefaultChallengeCount
}

var verifyCmd = &cobra.Command{
	Use:   "verify <artifact>",
	Short: "Checks a challenge artifact against the key store",
	Long: `Regenerates challenge --block under the artifact's nonce from the key store and
compares it with the artifact's ciphertext. Exits non-zero on mismatch.

Examples:
  carlock verify challenge.3.enc
  carlock verify challenge.4.enc --block 4`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeArtifacts,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting verify command")
		spinner, cleanup := startSpinner("Verifying...")
		defer cleanup()

		result, err := workflows.Verify(context.Background(), workflows.VerifyOptions{
			Settings: settings,
			Artifact: args[0],
			Block:    verifyBlock,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = ui.Ok() + " " + ui.Path.Sprint(displayPath(result.Path)) +
			" is challenge " + fmt.Sprint(result.Block) + " under nonce " + ui.Bytes(result.Nonce[:])
		return nil
	},
}
