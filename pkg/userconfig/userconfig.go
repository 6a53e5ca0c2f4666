// Package userconfig stores the reader's preferences in
// ~/.config/explainer/prefs.yaml.
package userconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/docker/explainer/pkg/paths"
)

// CurrentVersion is the current version of the preferences format
const CurrentVersion = "v1"

// Config holds the persisted preferences.
type Config struct {
	// Version is the preferences format version
	Version string `yaml:"version,omitempty"`
	// Theme is the overlay theme: auto, light or dark
	Theme string `yaml:"theme,omitempty"`
	// RelayURL is the relay server used when no --relay-url flag is given
	RelayURL string `yaml:"relay_url,omitempty"`
	// SearchURL is the read-more link pattern; %s receives the selection
	SearchURL string `yaml:"search_url,omitempty"`
}

// Path returns the path to the preferences file
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "prefs.yaml")
}

// Load loads the preferences from the default location.
func Load() (*Config, error) {
	return loadFrom(Path())
}

// loadFrom reads and parses the file, returning empty preferences if it doesn't exist.
func loadFrom(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}

	return config, nil
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	c.Version = CurrentVersion

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// Store updates individual preferences in a file without losing the others.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store for the file at path, or the default file when
// path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = Path()
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadFrom(s.path)
}

// SaveTheme persists the theme preference.
func (s *Store) SaveTheme(theme string) error {
	return s.update(func(c *Config) { c.Theme = theme })
}

func (s *Store) update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := loadFrom(s.path)
	if err != nil {
		// A corrupt file is replaced rather than blocking every save.
		config = &Config{}
	}
	fn(config)
	return config.saveTo(s.path)
}
