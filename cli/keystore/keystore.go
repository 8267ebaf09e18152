// Package keystore provides encrypted storage for AskNews credentials.
package keystore

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore stores named secrets at rest.
type Keystore interface {
	// Set stores a secret under name.
	Set(name, value string) error
	// Get retrieves a secret by name. Returns *ErrKeyNotFound when
	// absent.
	Get(name string) (string, error)
	// Delete removes a secret by name.
	Delete(name string) error
	// List returns all stored secret names.
	List() ([]string, error)
}

// ErrKeyNotFound is returned when a requested secret does not exist.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Name
}

// DefaultKeystorePath returns the default keystore file path:
// ~/.asknews/credentials.enc, or %USERPROFILE%\.asknews\credentials.enc
// on Windows.
func DefaultKeystorePath() string {
	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		return "credentials.enc"
	}
	return filepath.Join(homeDir, ".asknews", "credentials.enc")
}

// NewKeystore opens the default file-backed keystore.
func NewKeystore() (Keystore, error) {
	return NewFileKeystore(DefaultKeystorePath())
}
