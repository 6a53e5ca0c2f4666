package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// GetConfigDir returns the user's config directory for explainer.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".explainer-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "explainer"))
}

// GetDataDir returns the user's data directory for explainer (logs).
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".explainer"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".explainer"))
}

// GetHomeDir returns the user's home directory, or "" if it cannot be
// determined.
func GetHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Clean(homeDir)
}

// ExpandTilde expands a leading "~/" in path to the user's home directory.
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir := GetHomeDir()
	if homeDir == "" {
		return "", errors.New("failed to get user home directory")
	}

	return filepath.Join(homeDir, strings.TrimPrefix(path, "~/")), nil
}
