package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/secrets"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/utils"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	solveOffsets  string
	solveTarget   int
	solveForce    bool
	solveNoVerify bool
)

func init() {
	solveCmd.Flags().StringVar(&solveOffsets, "offsets", "", "comma-separated block offset of each input (default 0,1,2,...)")
	solveCmd.Flags().IntVar(&solveTarget, "target", 0, "block offset to predict (default: last offset + 1)")
	solveCmd.Flags().BoolVarP(&solveForce, "force", "f", false, "replace an existing explicit output artifact")
	solveCmd.Flags().BoolVar(&solveNoVerify, "no-verify", false, "skip checking the prediction against the key store")
}

func resetSolveCommandState() {
	solveOffsets = ""
	solveTarget = 0
	solveForce = false
	solveNoVerify = false
}

var solveCmd = &cobra.Command{
	Use:     "solve [inputs] [output]",
	Aliases: []string{"c"},
	Short:   "Predicts an unseen artifact from artifacts that share a nonce",
	Long: `Recovers the register from ciphertexts encrypted under one key and nonce, and
writes the predicted ciphertext for the next block. The key is never used.

inputs is a comma-separated list of artifact names or globs (default:
challenge.1.enc,challenge.2.enc). When the inputs are challenges, output
defaults to the next challenge, e.g. challenge.3.enc, replacing the generated
one. Any other inputs need an explicit output, which is never overwritten
unless --force is given.

The solver only writes a prediction when the inputs pin down the whole
register state; otherwise it reports insufficient data.

Unless --no-verify is given, a predicted challenge is then checked against the
key store when one is present.

Examples:
  carlock solve
  carlock solve challenge.1.enc,challenge.3.enc --offsets 0,2 --target 3
  carlock solve 'car.*.enc' predicted.enc --no-verify`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting solve command")
		spinner, cleanup := startSpinner("Solving...")
		defer cleanup()

		offsets, err := utils.ParseOffsets(solveOffsets)
		if err != nil {
			return reportError(spinner, err)
		}

		opts := workflows.SolveOptions{
			Settings: settings,
			Offsets:  offsets,
			Force:    solveForce,
		}
		if len(args) >= 1 {
			opts.Inputs = []string{args[0]}
		}
		if len(args) == 2 {
			opts.Output = args[1]
		}
		if cmd.Flags().Changed("target") {
			target := solveTarget
			opts.Target = &target
		}

		result, err := workflows.Solve(context.Background(), opts)
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Infof("Solved %d relations (rank %d), state recovered: %t", len(result.Inputs)-1, result.Rank, result.Recovered)
		Logger.Debugf("Predicted ciphertext: %x", result.Ciphertext)

		inputs := make([]string, len(result.Inputs))
		for i, in := range result.Inputs {
			inputs[i] = filepath.Base(in)
		}
		finalMessage := ui.Ok() + " Predicted block " + fmt.Sprint(result.Target) + " from " +
			ui.Path.Sprint(strings.Join(inputs, ", ")) + " under nonce " + ui.Bytes(result.Nonce[:]) + "\n" +
			"    written to " + ui.Path.Sprint(displayPath(result.Output))

		if solveNoVerify {
			spinner.FinalMSG = finalMessage
			return nil
		}
		status, err := verifyPrediction(result.Output)
		spinner.FinalMSG = finalMessage + "\n" + status
		return err
	},
}

// verifyPrediction checks a predicted challenge artifact against the key
// store. A missing store or a non-challenge output skips the check.
func verifyPrediction(output string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(output), secrets.ArtifactExt)
	block, ok := secrets.ArtifactIndex(output)
	if !ok || !strings.HasPrefix(base, secrets.ChallengeName+".") {
		return ui.Muted.Sprint("not a challenge artifact, verification skipped"), nil
	}

	result, err := workflows.Verify(context.Background(), workflows.VerifyOptions{
		Settings: settings,
		Artifact: output,
		Block:    block,
	})
	switch {
	case errors.Is(err, kerrors.ErrConfigMissing):
		return ui.Muted.Sprint("no key store, verification skipped"), nil
	case err != nil && result == nil:
		return ui.Fail() + " Verification error: " + err.Error(), err
	case err != nil:
		return ui.Fail() + " Prediction rejected by the key store " +
			ui.Muted.Sprintf("expected %x", result.Expected), err
	default:
		return ui.Ok() + " Accepted as challenge " + fmt.Sprint(result.Block), nil
	}
}
