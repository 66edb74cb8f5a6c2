package cmd

import (
	"fmt"

	"github.com/PolarWolf314/carlock/internal/configs"
	logger "github.com/PolarWolf314/carlock/internal/logging"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose  bool
	debug    bool
	storeDir string
	Logger   logger.Logger

	// settings is resolved from --dir before every subcommand runs.
	settings configs.Settings

	CarlockCmd = &cobra.Command{
		Use:   "carlock",
		Short: "carlock - a rolling unlock code protocol and its nonce-reuse attack",
		Long: `carlock drives a stream-cipher "unlock code" protocol: a 64-bit LFSR produces
each code, which is encrypted in counter mode and written as a numbered artifact.

In insecure-fixed nonce mode every artifact reuses one nonce, so the keystream
cancels under XOR. The solve command uses that to predict an unseen challenge
from observed ones without knowing the key.

Typical session:
  carlock keygen          # create key_config.toml
  carlock open            # write car.1.enc
  carlock challenge       # write challenge.1..3.enc under car.1.enc's nonce
  carlock solve           # predict challenge.3.enc from challenge.1 and 2`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing carlock with verbose=%t, debug=%t, dir=%q", verbose, debug, storeDir)

			s, err := configs.NewSettings(storeDir)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to resolve store directory: %v", err)
			}
			settings = s
			Logger.Debugf("Store directory: %s", settings.Dir)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewFigure("carlock", "standard", true)
			fmt.Fprintln(cmd.OutOrStdout(), banner.String())
			fmt.Fprintln(cmd.OutOrStdout(), ui.Hint()+" Run "+ui.Code.Sprint("carlock --help")+" to see available commands.")
		},
	}
)

func init() {
	CarlockCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	CarlockCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	CarlockCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "directory holding the key store and artifacts (default: working directory)")

	CarlockCmd.AddCommand(keygenCmd)
	CarlockCmd.AddCommand(openCmd)
	CarlockCmd.AddCommand(challengeCmd)
	CarlockCmd.AddCommand(solveCmd)
	CarlockCmd.AddCommand(verifyCmd)
	CarlockCmd.AddCommand(statusCmd)
	CarlockCmd.AddCommand(logCmd)
}

// Execute runs the root command.
func Execute() error {
	return CarlockCmd.Execute()
}

// Helper functions for testing

// GetCarlockCmd returns the root command for testing.
func GetCarlockCmd() *cobra.Command {
	return CarlockCmd
}

// ResetGlobalState resets all global flag variables to their defaults for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	storeDir = ""
	settings = configs.Settings{}
	resetKeygenCommandState()
	resetChallengeCommandState()
	resetSolveCommandState()
	resetVerifyCommandState()
	resetLogCommandState()
	resetFlagsChanged(CarlockCmd)
}

// resetFlagsChanged clears pflag's Changed marks left by a previous Execute.
func resetFlagsChanged(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, sub := range c.Commands() {
		resetFlagsChanged(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
