package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rig-run/rig/pkg/types"
	"github.com/tidwall/jsonc"
)

// Store owns the global configuration document for one invocation. The
// document is loaded lazily on first access, mutated in memory, and written
// back only by an explicit Save. One CLI run is the single writer.
type Store struct {
	path   string
	doc    *types.Config
	loaded bool
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore creates a store backed by the standard global config path.
func DefaultStore() *Store {
	return NewStore(GlobalConfigPath())
}

// Path returns the file the store reads from and writes to.
func (s *Store) Path() string {
	return s.path
}

// Load returns the configuration document, reading it from disk the first
// time it is called. A missing file yields an empty document; a file that
// cannot be parsed is a load failure the caller must treat as fatal.
func (s *Store) Load() (*types.Config, error) {
	if s.loaded {
		return s.doc, nil
	}

	doc := &types.Config{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", s.path, err)
		}
	} else {
		// Strip JSONC comments, then expand {env:VAR} placeholders.
		data = jsonc.ToJSON(data)
		data = interpolate(data)
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", s.path, err)
		}
	}

	s.doc = doc
	s.loaded = true
	return s.doc, nil
}

// Save writes the current document back to disk, creating the parent
// directory if needed. Saving before Load is an error.
func (s *Store) Save() error {
	if !s.loaded {
		return fmt.Errorf("save config %s: document not loaded", s.path)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("save config %s: %w", s.path, err)
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("save config %s: %w", s.path, err)
	}

	return os.WriteFile(s.path, data, 0644)
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate expands {env:VAR_NAME} placeholders in the raw document.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}
