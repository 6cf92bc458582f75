package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the credential as JSON in the user's data directory.
type FileStore struct {
	path string
}

// NewFileStore creates a store at the given path, or at the default
// XDG location when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		defaultPath, err := defaultStatePath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return &FileStore{path: path}, nil
}

// Load reads the saved credential.
func (f *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	if cred.Token == "" {
		return nil, fmt.Errorf("credential file %s has no token", f.path)
	}
	return &cred, nil
}

// Save writes the credential with owner-only permissions.
func (f *FileStore) Save(cred *Credential) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Clear removes the credential file. A missing file is not an error.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

func defaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	// Use XDG_DATA_HOME if set, otherwise ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataDir, "tally", "credential.json"), nil
}
