// Package audit records carlock operations in an append-only log.
//
// Every state-changing operation (keygen, open, challenge, solve, verify)
// appends one JSON object per line to audit.jsonl next to the key store.
// Entries carry the key ID and store index so a reader can line up
// artifacts with the register advances that produced them.
//
// # Usage
//
//	entry := audit.ForConfig("open", cfg)
//	entry.Files = []string{path}
//	audit.Log(settings, entry)
//
// # Failure Handling
//
// Audit logging is best-effort. A failed write never fails the operation
// that triggered it. ReadEntries skips malformed lines, which is what a
// process killed mid-append leaves behind.
package audit
