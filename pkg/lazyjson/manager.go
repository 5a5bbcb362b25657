// Package lazyjson provides a thread-safe, lazy-loading manager for JSON files.
// It tracks modifications (dirty state) and ensures atomic writes when saving
// to disk. The disk cache index is its main consumer.
package lazyjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager provides high-level control over a JSON-backed data structure.
// Data is only loaded from disk when first requested; a missing file
// yields the zero value of T.
type Manager[T any] struct {
	filepath string
	data     *T
	loaded   bool
	dirty    bool
	mu       sync.RWMutex
}


// New creates a new Manager for the given file path.
func New[T any](filepath string) *Manager[T] {
	return &Manager[T]{filepath: filepath}
}

// Get returns the current data, loading it lazily if needed.
// The returned pointer is for reading; use Modify for writes.
func (m *Manager[T]) Get() (*T, error) {
	m.mu.RLock()
	if m.loaded {
		defer m.mu.RUnlock()
		return m.data, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.loaded {
		return m.data, nil
	}

	return m.data, m.loadLocked()
}

// Modify executes a function that can modify the data.
// The data is lazily loaded if needed, and automatically marked dirty.
func (m *Manager[T]) Modify(fn func(*T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		if err := m.loadLocked(); err != nil {
			return err
		}
	}

	if err := fn(m.data); err != nil {
		return err
	}

	m.dirty = true
	return nil
}

// Save writes the data to disk if it's dirty.
// Does nothing if the data hasn't been modified.
func (m *Manager[T]) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	if !m.loaded {
		return errors.New("cannot save: data not loaded")
	}

	return m.saveLocked()
}

// Reload forces a reload from disk, discarding any unsaved changes.
func (m *Manager[T]) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = false
	m.dirty = false
	m.data = nil

	return m.loadLocked()
}

// IsDirty returns true if the data has been modified since the last load/save.
func (m *Manager[T]) IsDirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// loadLocked loads data from the file.
// Must be called with write lock held.
func (m *Manager[T]) loadLocked() error {
	data, err := os.ReadFile(m.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			var zero T
			m.data = &zero
			m.loaded = true
			m.dirty = true // fresh state, save it when asked
			return nil
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	m.data = &result
	m.loaded = true
	m.dirty = false

	return nil
}

// saveLocked writes data to the file atomically.
// Must be called with write lock held.
func (m *Manager[T]) saveLocked() error {
	data, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	dir := filepath.Dir(m.filepath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tempFile := m.filepath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, m.filepath); err != nil {
		os.Remove(tempFile) // Clean up temp file on error
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	m.dirty = false
	return nil
}
