// Package secrets holds the cryptographic collaborators of the unlock-code
// protocol and the artifact files they produce.
//
// # Ciphers
//
// Cipher is an unauthenticated counter-mode stream cipher keyed by the
// 16-byte protocol key and an 8-byte nonce:
//
//   - AESCTR: AES-128 with the counter block nonce || 64-bit big-endian counter
//   - ChaCha20: ChaCha20 keyed through HKDF-SHA256 from the protocol key
//
// Both produce the same keystream for the same (key, nonce) pair no matter
// what is encrypted. Encrypting two codes under one pair therefore leaks
// their XOR; the challenge solver relies on exactly that.
//
// # Nonce Sources
//
// RandomNonce draws from crypto/rand and is the only safe choice.
// InsecureFixedNonce returns the same value every time and exists to
// reproduce the flawed protocol. NonceSourceFor maps the stored nonce mode
// to a source; there is no implicit default.
//
// # Artifacts
//
// An artifact file is the 8-byte nonce followed by the ciphertext. Unlock
// codes are named <name>.<index>.enc, challenges challenge.<n>.enc.
// Artifacts are written once and never overwritten.
package secrets
