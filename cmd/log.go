package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/carlock/internal/audit"
	"github.com/PolarWolf314/carlock/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logOperation string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().StringVar(&logOperation, "op", "", "filter by operation (keygen, open, challenge, solve, verify)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func resetLogCommandState() {
	logLimit = 0
	logOperation = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log kept in audit.jsonl next to the key store.

Examples:
  carlock log
  carlock log -n 5
  carlock log --op open
  carlock log --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")
		spinner, cleanup := startSpinner("Loading audit log...")
		defer cleanup()

		result, err := workflows.Log(context.Background(), workflows.LogOptions{
			Settings:  settings,
			Operation: logOperation,
			Limit:     logLimit,
		})
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Debugf("Showing %d of %d entries", len(result.Entries), result.Total)

		if len(result.Entries) == 0 {
			if result.Total == 0 {
				spinner.FinalMSG = "No audit log entries found."
			} else {
				spinner.FinalMSG = "No audit log entries found matching the filters."
			}
			return nil
		}

		if logJSON {
			data, err := json.MarshalIndent(result.Entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal entries to JSON: %w", err)
			}
			spinner.FinalMSG = string(data)
			return nil
		}

		var b strings.Builder
		for _, e := range result.Entries {
			fmt.Fprintf(&b, "%-27s  %-9s  %s\n", e.Timestamp, e.Operation, formatDetails(e))
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

// formatDetails renders the operation-specific fields of an entry.
func formatDetails(e audit.Entry) string {
	var parts []string
	if e.Index != nil {
		parts = append(parts, fmt.Sprintf("index=%d", *e.Index))
	}
	if len(e.Files) > 0 {
		names := make([]string, len(e.Files))
		for i, f := range e.Files {
			names[i] = filepath.Base(f)
		}
		parts = append(parts, "files="+strings.Join(names, ","))
	}
	if e.Nonce != "" {
		parts = append(parts, "nonce="+e.Nonce)
	}
	if e.Suite != "" {
		parts = append(parts, "suite="+e.Suite)
	}
	if e.NonceMode != "" {
		parts = append(parts, "nonce_mode="+e.NonceMode)
	}
	if e.Result != "" {
		parts = append(parts, "result="+e.Result)
	}
	return strings.Join(parts, " ")
}
