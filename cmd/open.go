package cmd

import (
	"context"
	"strconv"

	"github.com/PolarWolf314/carlock/internal/configs"
	"github.com/PolarWolf314/carlock/internal/secrets"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open",
	Aliases: []string{"o"},
	Short:   "Generates the next unlock code",
	Long: `Clocks the register for one 64-bit block, encrypts it and writes the
artifact <name>.<index>.enc (nonce followed by ciphertext). The store is saved
with the advanced register and index.

When the store's nonce mode is insecure-fixed a warning is printed on every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting open command")

		cfg, err := configs.Load(settings)
		if err != nil {
			spinner, cleanup := startSpinner("Opening...")
			defer cleanup()
			return reportError(spinner, err)
		}
		if cfg.NonceMode == configs.NonceInsecureFixed {
			Logger.WarnfAlways("%s", insecureNonceWarning())
		}
		source, err := secrets.NonceSourceFor(cfg.NonceMode)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to select nonce source: %v", err)
		}

		spinner, cleanup := startSpinner("Generating unlock code...")
		defer cleanup()

		result, err := workflows.Unlock(context.Background(), workflows.UnlockOptions{
			Settings:    settings,
			NonceSource: source,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		Logger.Infof("Store advanced to index %d", result.Index)
		Logger.Debugf("Ciphertext: %x", result.Ciphertext)

		spinner.FinalMSG = ui.Ok() + " Unlock code written to " + ui.Path.Sprint(displayPath(result.Path)) + "\n" +
			"    nonce " + ui.Bytes(result.Nonce[:]) + " " + ui.Muted.Sprint("index "+strconv.Itoa(result.Index))
		return nil
	},
}
