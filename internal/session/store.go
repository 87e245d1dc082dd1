package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a key/value store whose reads and writes are atomic per key. A
// concurrent reader sees either the old or the new value, never a mix.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	Delete(key string) error
	Clear() error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	return nil
}

// FileStore keeps the values in a JSON file. Every write replaces the whole
// file through a temp file and rename so other processes never read a torn file.
type FileStore struct {
	mu   sync.RWMutex
	path string
	mem  map[string]string
}

func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path, mem: map[string]string{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &store.mem); err != nil {
			return nil, fmt.Errorf("decode session file: %w", err)
		}
	}
	return store, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.mem[key]
	return value, ok
}

func (s *FileStore) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneValues(s.mem)
	next[key] = value
	return s.commit(next)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mem[key]; !ok {
		return nil
	}
	next := cloneValues(s.mem)
	delete(next, key)
	return s.commit(next)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	s.mem = map[string]string{}
	return nil
}

// commit must be called with s.mu held.
func (s *FileStore) commit(next map[string]string) error {
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}

	s.mem = next
	return nil
}

func cloneValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values)+1)
	for key, value := range values {
		out[key] = value
	}
	return out
}
