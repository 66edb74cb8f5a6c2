// Package workflows provides high-level orchestration for carlock commands.
//
// Workflows coordinate the lower-level packages (configs, lfsr, secrets,
// attack, audit) to implement one user-facing operation each, independent
// of CLI concerns like flag parsing, spinners and output formatting.
//
// # Available Workflows
//
//   - KeyGen: creates the protocol store with a fresh key and register
//   - Unlock: emits the next unlock code and advances the store
//   - CreateChallenges: derives challenge artifacts under an observed nonce
//   - Solve: predicts an unseen challenge from artifacts sharing a nonce
//   - Verify: checks a challenge artifact against the protocol store
//   - Status: summarizes the store and the artifacts next to it
//   - Log: reads the audit trail
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package so the
// CLI layer can react without string matching:
//
//	result, err := workflows.Solve(ctx, opts)
//	if errors.Is(err, kerrors.ErrInsufficientData) {
//	    // ask for more observations
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter
// and check it before touching the filesystem.
package workflows
