// Package storage provides the atomic state-file store under the
// config directory. Writes land via tmp file → fsync → rename, so a
// crash mid-write never leaves a half-written state file behind.
package storage

// Provider is the interface for state file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to the state root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the state root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the state root).
	Delete(path string) error
}
