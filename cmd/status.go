package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/carlock/internal/configs"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/utils"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the key store and the artifacts next to it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")
		spinner, cleanup := startSpinner("Reading key store...")
		defer cleanup()

		result, err := workflows.Status(context.Background(), workflows.StatusOptions{Settings: settings})
		if err != nil {
			return reportError(spinner, err)
		}

		cfg := result.Config
		var b strings.Builder
		fmt.Fprintf(&b, "Protocol %s %s\n", ui.Highlight.Sprint(cfg.Name), ui.Muted.Sprint("key "+cfg.KeyID))
		fmt.Fprintf(&b, "  store:      %s\n", ui.Path.Sprint(displayPath(result.StorePath)))
		fmt.Fprintf(&b, "  created:    %s\n", cfg.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(&b, "  suite:      %s\n", cfg.Suite)
		if cfg.NonceMode == configs.NonceInsecureFixed {
			fmt.Fprintf(&b, "  nonce mode: %s\n", ui.Warning.Sprint(string(cfg.NonceMode)))
		} else {
			fmt.Fprintf(&b, "  nonce mode: %s\n", cfg.NonceMode)
		}
		fmt.Fprintf(&b, "  index:      %d\n", cfg.Index)
		fmt.Fprintf(&b, "  next code:  %s\n", ui.Path.Sprint(displayPath(result.NextArtifact)))
		Logger.Debugf("Register state: %s", ui.Bits(cfg.State))

		if len(result.Artifacts) > 0 {
			b.WriteString("Unlock codes:" + utils.FormatPaths(result.Artifacts, settings.Dir))
		}
		if len(result.Challenges) > 0 {
			b.WriteString("Challenges:" + utils.FormatPaths(result.Challenges, settings.Dir))
		}

		spinner.FinalMSG = b.String()
		return nil
	},
}
