package errors

import "errors"

// Store errors indicate the persisted protocol state cannot be used.
var (
	// ErrConfigMissing indicates the key store is absent or cannot be decoded.
	ErrConfigMissing = errors.New("no key found, run key generation first")

	// ErrConfigExists indicates key generation would overwrite an existing store.
	ErrConfigExists = errors.New("key store already exists")

	// ErrMalformedInput indicates a register, tap mask, bit sequence or stored field is invalid.
	ErrMalformedInput = errors.New("malformed input")
)

// Cipher errors indicate an unsupported cipher configuration.
var (
	// ErrInvalidKeyLength indicates the protocol key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrUnknownSuite indicates the stored cipher suite is not supported.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrUnknownNonceMode indicates the stored nonce mode is not supported.
	ErrUnknownNonceMode = errors.New("unknown nonce mode")
)

// Artifact errors indicate issues reading or writing artifact files.
var (
	// ErrIOFailure indicates an artifact or store could not be read or written.
	ErrIOFailure = errors.New("i/o failure")

	// ErrArtifactExists indicates an artifact would be overwritten.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrNoArtifactsFound indicates no artifacts matched the provided patterns.
	ErrNoArtifactsFound = errors.New("no matching artifacts found")
)

// Solver errors indicate the challenge could not be answered with certainty.
var (
	// ErrInsufficientData indicates the observations do not pin down the register state.
	ErrInsufficientData = errors.New("insufficient data to recover register state")

	// ErrNonceMismatch indicates the artifacts were not produced under a shared nonce.
	ErrNonceMismatch = errors.New("artifacts do not share a nonce")

	// ErrInconsistentObservations indicates no register state explains every observation.
	ErrInconsistentObservations = errors.New("observations are inconsistent")

	// ErrVerificationFailed indicates a submitted artifact does not match the expected one.
	ErrVerificationFailed = errors.New("artifact verification failed")
)
