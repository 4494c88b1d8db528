package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/storage"
)

// BacktestCacheStore keeps one backtest_cache_<key>.json file per cache key.
type BacktestCacheStore struct {
	dir string
	mu  sync.RWMutex
}

// NewBacktestCacheStore creates the directory if needed.
func NewBacktestCacheStore(dir string) (*BacktestCacheStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &BacktestCacheStore{dir: dir}, nil
}

// Compile-time interface check.
var _ storage.BacktestCacheStore = (*BacktestCacheStore)(nil)

func (s *BacktestCacheStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("%w: cache key %q", storage.ErrInvalidInput, key)
	}
	return filepath.Join(s.dir, "backtest_cache_"+key+".json"), nil
}

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *BacktestCacheStore) Get(_ context.Context, key string) (*domain.BacktestCacheEntry, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry domain.BacktestCacheEntry
	if err := readJSON(path, &entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read backtest cache: %w", err)
	}
	entry.Key = key
	return &entry, nil
}

// Put replaces the entry stored under entry.Key.
func (s *BacktestCacheStore) Put(_ context.Context, entry *domain.BacktestCacheEntry) error {
	if entry == nil {
		return storage.ErrInvalidInput
	}
	path, err := s.path(entry.Key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(path, entry)
}

// Delete removes an entry. Deleting a missing key is not an error.
func (s *BacktestCacheStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete backtest cache: %w", err)
	}
	return nil
}
