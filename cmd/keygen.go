package cmd

import (
	"context"

	"github.com/PolarWolf314/carlock/internal/configs"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	keygenName      string
	keygenSuite     = configs.SuiteAESCTR
	keygenNonceMode = configs.NonceInsecureFixed
	keygenForce     bool
)

func init() {
	keygenCmd.Flags().StringVar(&keygenName, "name", configs.DefaultName, "prefix for unlock code artifacts")
	keygenCmd.Flags().Var(newSuiteValue(&keygenSuite), "suite", "counter-mode cipher ("+joinSuites()+")")
	keygenCmd.Flags().Var(newNonceModeValue(&keygenNonceMode), "nonce-mode", "nonce source for open ("+joinNonceModes()+")")
	keygenCmd.Flags().BoolVarP(&keygenForce, "force", "f", false, "replace an existing key store")

	_ = keygenCmd.RegisterFlagCompletionFunc("suite", completeSuites)
	_ = keygenCmd.RegisterFlagCompletionFunc("nonce-mode", completeNonceModes)
}

func resetKeygenCommandState() {
	keygenName = configs.DefaultName
	keygenSuite = configs.SuiteAESCTR
	keygenNonceMode = configs.NonceInsecureFixed
	keygenForce = false
}

var keygenCmd = &cobra.Command{
	Use:     "keygen",
	Aliases: []string{"g"},
	Short:   "Generates a key and register state into key_config.toml",
	Long: `Generates a random 128-bit key and 64-bit register state and writes them,
with index 0, to key_config.toml in the store directory.

The nonce mode is stored with the key and decides how every later open picks
its nonce. insecure-fixed (the default) reuses one nonce for every artifact,
which is what makes the challenge solvable.

Examples:
  carlock keygen
  carlock keygen --suite chacha20
  carlock keygen --nonce-mode random --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keygen command")
		spinner, cleanup := startSpinner("Generating key...")
		defer cleanup()

		result, err := workflows.KeyGen(context.Background(), workflows.KeyGenOptions{
			Settings:  settings,
			Name:      keygenName,
			Suite:     keygenSuite,
			NonceMode: keygenNonceMode,
			Force:     keygenForce,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		cfg := result.Config
		Logger.Infof("Key %s written to %s", cfg.KeyID, result.StorePath)
		Logger.Debugf("Initial register state: %s", ui.Bits(cfg.State))

		verb := "created"
		if result.Replaced {
			verb = "replaced"
		}
		finalMessage := ui.Ok() + " Key store " + verb + " for " + ui.Highlight.Sprint(cfg.Name) +
			" " + ui.Muted.Sprint(string(cfg.Suite)+", key "+cfg.KeyID) + "\n" +
			"    " + ui.Path.Sprint(displayPath(result.StorePath)) + "\n"
		if cfg.NonceMode == configs.NonceInsecureFixed {
			finalMessage += ui.Warning.Sprint("⚠") + " " + insecureNonceWarning() + "\n"
		}
		finalMessage += ui.Hint() + " Run " + ui.Code.Sprint("carlock open") + " to generate the first unlock code"

		spinner.FinalMSG = finalMessage
		return nil
	},
}
