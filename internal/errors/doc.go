// Package errors provides typed error values for the carlock application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Store errors: the key store is missing or corrupt (ErrConfigMissing, ErrMalformedInput)
//   - Cipher errors: unsupported suites or keys (ErrUnknownSuite, ErrInvalidKeyLength)
//   - Artifact errors: reading or writing artifact files (ErrIOFailure, ErrArtifactExists)
//   - Solver errors: the challenge cannot be answered (ErrInsufficientData, ErrNonceMismatch)
//
// # Usage
//
// Return errors from internal packages:
//
//	if !exists {
//	    return nil, errors.ErrConfigMissing
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, kerrors.ErrConfigMissing) {
//	    // Tell the user to run keygen
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading artifact %s: %w", path, errors.ErrIOFailure)
package errors
