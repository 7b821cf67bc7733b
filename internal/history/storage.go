package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Storage is the persistence backend behind a Store. It holds one opaque
// blob; Load returns (nil, nil) when nothing has been saved.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Remove() error
}

// FileStorage keeps the history in a single JSON file. Writes go to a temp
// file that is renamed into place, and every call holds a flock on
// <path>.lock so concurrent scout processes never see a torn file.
type FileStorage struct {
	path  string
	flock *flock.Flock
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage returns a FileStorage for path. Nothing is created until
// the first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

// Path returns the history file path.
func (s *FileStorage) Path() string { return s.path }

// Load reads the file under a shared lock.
func (s *FileStorage) Load() ([]byte, error) {
	if _, err := os.Stat(filepath.Dir(s.path)); os.IsNotExist(err) {
		return nil, nil
	}

	if err := s.flock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire history lock: %w", err)
	}
	defer func() { _ = s.flock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return data, nil
}

// Save atomically replaces the file under an exclusive lock.
func (s *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire history lock: %w", err)
	}
	defer func() { _ = s.flock.Unlock() }()

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func (s *FileStorage) Remove() error {
	if _, err := os.Stat(filepath.Dir(s.path)); os.IsNotExist(err) {
		return nil
	}

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire history lock: %w", err)
	}
	defer func() { _ = s.flock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove history: %w", err)
	}
	return nil
}

// MemoryStorage keeps the blob in memory. Used by tests and --no-history runs.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty MemoryStorage, optionally seeded with data.
func NewMemoryStorage(seed []byte) *MemoryStorage {
	return &MemoryStorage{data: cloneBytes(seed)}
}

// Load returns a copy of the stored blob.
func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneBytes(m.data), nil
}

// Save replaces the stored blob.
func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = cloneBytes(data)
	return nil
}

// Remove drops the stored blob.
func (m *MemoryStorage) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
