package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const entryExt = ".json"

// Cache errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
)

// FileStore stores entries as JSON files in one directory. It is safe for
// concurrent use.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu sync.RWMutex
}

// NewFileStore creates dir if needed and returns a store whose entries live
// for ttl.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// TTL returns the entry lifetime.
func (s *FileStore) TTL() time.Duration {
	return s.ttl
}

// Get decodes the entry for key into v. It returns ErrNotFound or
// ErrExpired when there is no usable entry; expired files are removed.
func (s *FileStore) Get(key string, v any) error {
	if key == "" {
		return ErrInvalidKey
	}
	path := s.path(key)

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return ErrExpired
	}
	if err = json.Unmarshal(entry.Data, v); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}
	return nil
}

// Set stores v under key, replacing any existing entry.
func (s *FileStore) Set(key string, v any) error {
	if key == "" {
		return ErrInvalidKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cached value: %w", err)
	}
	encoded, err := json.Marshal(newEntry(key, data, s.now(), s.ttl))
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	return s.removeWhere(func(string) bool { return true })
}

// CleanupExpired removes expired and unreadable entries and returns how
// many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	now := s.now()
	return s.removeWhere(func(path string) bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var entry Entry
		if err = json.Unmarshal(data, &entry); err != nil {
			return true
		}
		return entry.ExpiredAt(now)
	})
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func (s *FileStore) removeWhere(match func(path string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		if !match(path) {
			continue
		}
		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) entryFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == entryExt {
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	return files, nil
}

func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.dir, safe+entryExt)
}
