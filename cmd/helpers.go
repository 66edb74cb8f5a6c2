package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/carlock/internal/errors"
	"github.com/PolarWolf314/carlock/internal/ui"
	"github.com/PolarWolf314/carlock/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message unless
// running verbose, debug, or with stdout redirected.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	animate := !verbose && !debug && utils.IsStdoutTerminal()
	if animate {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if animate {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if animate {
			s.Stop()
		}

		// Printed to stdout for tests to capture.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// reportError stores a user-facing message for err on the spinner. It
// returns err when the command should exit non-zero.
func reportError(s *spinner.Spinner, err error) error {
	Logger.Debugf("Command failed: %v", err)
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return err
	}
	return nil
}

// formatError formats an error for display to the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrConfigMissing):
		return ui.Fail() + " No key store found in " + ui.Path.Sprint(settings.Dir) + "\n" +
			ui.Hint() + " Run " + ui.Code.Sprint("carlock keygen") + " first"

	case errors.Is(err, kerrors.ErrConfigExists):
		return ui.Fail() + " A key store already exists at " + ui.Path.Sprint(settings.StorePath()) + "\n" +
			ui.Hint() + " Use " + ui.Flag.Sprint("--force") + " to replace it"

	case errors.Is(err, kerrors.ErrArtifactExists):
		return ui.Fail() + " " + err.Error() + "\n" +
			ui.Hint() + " Artifacts are never overwritten; use " + ui.Flag.Sprint("--force") + " where supported"

	case errors.Is(err, kerrors.ErrNoArtifactsFound):
		return ui.Fail() + " No artifacts matched the given names"

	case errors.Is(err, kerrors.ErrNonceMismatch):
		return ui.Fail() + " The inputs were not encrypted under one nonce\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInsufficientData):
		return ui.Fail() + " Not enough independent observations to predict the target\n" +
			ui.Error.Sprint("Error: ") + err.Error() + "\n" +
			ui.Hint() + " Provide more artifacts that share the nonce"

	case errors.Is(err, kerrors.ErrInconsistentObservations):
		return ui.Fail() + " The observations contradict each other; check the offsets\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrVerificationFailed):
		return ui.Fail() + " Verification failed\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	default:
		return ui.Fail() + " " + err.Error()
	}
}

// isUnexpectedError returns true if the error should cause a non-zero exit.
// A missing store or an artifact that could not be written always fails the
// command; only refusals that leave nothing half done exit cleanly.
func isUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrConfigExists),
		errors.Is(err, kerrors.ErrNoArtifactsFound):
		return false
	default:
		return true
	}
}

// displayPath shows path relative to the store directory when inside it.
func displayPath(path string) string {
	if rel, err := filepath.Rel(settings.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func insecureNonceWarning() string {
	return "nonce mode is insecure-fixed: every artifact reuses one nonce and its keystream"
}
