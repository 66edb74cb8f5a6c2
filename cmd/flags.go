package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/carlock/internal/configs"
	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// suiteValue is a pflag.Value restricted to the supported cipher suites.
type suiteValue struct {
	target *configs.Suite
}

func newSuiteValue(target *configs.Suite) pflag.Value {
	return &suiteValue{target: target}
}

func (v *suiteValue) String() string { return string(*v.target) }

func (v *suiteValue) Set(s string) error {
	suite := configs.Suite(strings.ToLower(s))
	if !suite.Valid() {
		return fmt.Errorf("%w %q (choose from %s)", kerrors.ErrUnknownSuite, s, joinSuites())
	}
	*v.target = suite
	return nil
}

func (v *suiteValue) Type() string { return "suite" }

// nonceModeValue is a pflag.Value restricted to the supported nonce modes.
type nonceModeValue struct {
	target *configs.NonceMode
}

func newNonceModeValue(target *configs.NonceMode) pflag.Value {
	return &nonceModeValue{target: target}
}

func (v *nonceModeValue) String() string { return string(*v.target) }

func (v *nonceModeValue) Set(s string) error {
	mode := configs.NonceMode(strings.ToLower(s))
	if !mode.Valid() {
		return fmt.Errorf("%w %q (choose from %s)", kerrors.ErrUnknownNonceMode, s, joinNonceModes())
	}
	*v.target = mode
	return nil
}

func (v *nonceModeValue) Type() string { return "mode" }

func joinSuites() string {
	names := make([]string, len(configs.Suites))
	for i, s := range configs.Suites {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func joinNonceModes() string {
	names := make([]string, len(configs.NonceModes))
	for i, m := range configs.NonceModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func completeSuites(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return strings.Split(joinSuites(), ", "), cobra.ShellCompDirectiveNoFileComp
}

func completeNonceModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return strings.Split(joinNonceModes(), ", "), cobra.ShellCompDirectiveNoFileComp
}

// completeArtifacts offers .enc files for positional arguments.
func completeArtifacts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"enc"}, cobra.ShellCompDirectiveFilterFileExt
}
