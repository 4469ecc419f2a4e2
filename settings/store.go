package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/meigma/horizon/internal/fileops"
)

// FileName is the settings file name inside the user config directory.
const FileName = "settings.toml"

// Store loads and saves Settings.
type Store interface {
	// Load returns the stored settings, or Default if none are stored.
	Load() (Settings, error)
	// Save replaces the stored settings.
	Save(s Settings) error
}

// Interface compliance.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore keeps settings in a TOML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the settings file in the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "horizon", FileName), nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the settings file. A missing file yields Default.
func (f *FileStore) Load() (Settings, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", f.path, err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", f.path, err)
	}
	return s.withDefaults(), nil
}

// Save writes the settings file atomically, creating its directory.
func (f *FileStore) Save(s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := fileops.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write settings %s: %w", f.path, err)
	}
	return nil
}

// MemoryStore keeps settings in memory. The zero value holds Default.
type MemoryStore struct {
	mu    sync.Mutex
	s     Settings
	saved bool
	saves int
}

// NewMemoryStore returns a store holding s. Unset fields read back as
// their defaults, as with FileStore.
func NewMemoryStore(s Settings) *MemoryStore {
	return &MemoryStore{s: s, saved: true}
}

// Load returns the held settings with defaults filled in.
func (m *MemoryStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return Default(), nil
	}
	return m.s.withDefaults(), nil
}

// Save replaces the held settings.
func (m *MemoryStore) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	m.saved = true
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
