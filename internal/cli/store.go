package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultServer is used when neither a flag nor the session file names one.
const DefaultServer = "http://localhost:8080"

// Session is what the CLI remembers between invocations.
type Session struct {
	Server string `json:"server"`
	Token  string `json:"token,omitempty"`
	Email  string `json:"email,omitempty"`
}

// GetConfigDir returns ~/.yantra
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".yantra"), nil
}

// SessionPath returns the session file path under dir
func SessionPath(dir string) string {
	return filepath.Join(dir, "session.json")
}

// LoadSession reads the session file. A missing file is an empty session.
func LoadSession(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}
	return &s, nil
}

// SaveSession writes the session file readable by the owner only.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, path)
}
