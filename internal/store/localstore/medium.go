package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Medium is a minimal key-value surface modelled on browser local storage:
// synchronous reads and writes, atomic at single-key granularity, no
// cross-key transactions.
type Medium interface {
	// Get returns the value stored under key, and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// MemoryMedium is an in-process Medium backed by a mutex-guarded map.
type MemoryMedium struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{m: make(map[string][]byte)}
}

func (m *MemoryMedium) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryMedium) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.m[key] = v
	return nil
}

// FileMedium persists each key as one file in a directory. Writes go through
// a temp file and rename so a crash never leaves a torn value.
type FileMedium struct {
	dir string
}

func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create medium dir: %w", err)
	}
	return &FileMedium{dir: dir}, nil
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}

func (m *FileMedium) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(m.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return data, true, nil
}

func (m *FileMedium) Set(key string, value []byte) error {
	tmp := m.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, m.path(key)); err != nil {
		return fmt.Errorf("failed to commit key %q: %w", key, err)
	}
	return nil
}
