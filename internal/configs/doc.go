// Package configs manages the persisted key store of the unlock-code protocol.
//
// The store is a single TOML file, key_config.toml, in the working directory.
// It holds exactly one protocol record:
//
//   - name: prefix of every artifact file (default "car")
//   - key_id: UUID identifying the key in audit entries
//   - key: the 16-byte protocol key, hex encoded
//   - state: the 64 register bits as 0/1 integers
//   - index: number of unlock codes issued so far
//   - suite: counter-mode cipher ("aes-128-ctr" or "chacha20")
//   - nonce_mode: nonce source ("random" or "insecure-fixed")
//
// # Lifecycle
//
// GenerateKey creates a record once. Every unlock-code generation loads it,
// advances the register and saves it back. Save always overwrites the whole
// record through a temporary file and a rename, so a reader sees either the
// previous or the next record.
//
// A missing or undecodable store is reported as ErrConfigMissing; a store
// that decodes but violates an invariant is reported as ErrMalformedInput.
// Nothing is ever written after a failed Load.
//
// # Settings
//
// Settings carries the directory holding the store, the artifacts and the
// audit log. It is passed explicitly to every workflow; there is no global.
package configs
