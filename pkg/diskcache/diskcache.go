// Package diskcache is the persistent tier of the image cache.
// Fetched image bytes are stored under content-addressed filenames
// (SHA-256 of the source URL) with a JSON index recording sizes and
// access times for eviction. Failed URLs are remembered in the same
// index so repeated requests for a dead link do not hit the network.
package diskcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"webimg/pkg/config"
	"webimg/pkg/lazyjson"
)

// ErrNotFound is returned by Get when the URL has no cached content.
var ErrNotFound = errors.New("disk cache: not found")

// Entry describes one cached image file.
type Entry struct {
	// URL is the source the content was fetched from.
	URL string `json:"url"`
	// Size is the on-disk size in bytes (after compression, if any).
	Size int64 `json:"size"`
	// Compressed marks entries stored with zstd framing.
	Compressed bool `json:"compressed,omitempty"`
	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`
	// LastAccess is updated on every Get and drives eviction order.
	LastAccess time.Time `json:"last_access"`
}

type index struct {
	Entries map[string]*Entry `json:"entries"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Mutable
type Cache struct {
	dir       string
	indexPath string
	idx       *lazyjson.Manager[index]
}

// New creates a disk cache rooted at the configured image directory.
func New(cfg config.ReadOnly) *Cache {
	return &Cache{
		dir:       cfg.GetImageDir(),
		indexPath: cfg.GetIndexPath(),
		idx:       lazyjson.New[index](cfg.GetIndexPath()),
	}
}

// Key returns the content filename for a URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, Key(url))
}

// Set stores data for url. When tryCompress is true the bytes are
// zstd-framed, but only kept that way if the frame is actually smaller;
// already-compressed formats like JPEG fall back to raw storage.
func (c *Cache) Set(url string, data []byte, tryCompress bool) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	stored := data
	compress := false
	if tryCompress {
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		if buf.Len() < len(data) {
			stored = buf.Bytes()
			compress = true
		}
	}

	// The write must replace any previous content for the URL, so the
	// lock guards a plain overwrite rather than a create-once step.
	// Skipping it would leave the index describing the old bytes.
	target := c.path(url)
	unlock, err := Lock(target)
	if err != nil {
		return err
	}
	writeErr := os.WriteFile(target, stored, 0644)
	if err := unlock(); err != nil {
		slog.Warn("Failed to release cache file lock", "url", url, "error", err)
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}

	now := time.Now()
	return c.modifyIndex(func(ix *index) error {
		ix.Entries[Key(url)] = &Entry{
			URL:        url,
			Size:       int64(len(stored)),
			Compressed: compress,
			StoredAt:   now,
			LastAccess: now,
		}
		delete(ix.Failed, url)
		return nil
	})
}

// Get returns the stored bytes for url, decompressing if needed.
// A missing content file heals the index and reports ErrNotFound.
func (c *Cache) Get(url string) ([]byte, error) {
	ix, err := c.idx.Get()
	if err != nil {
		return nil, err
	}

	entry, ok := ix.Entries[Key(url)]
	if !ok {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(c.path(url))
	if err != nil {
		if os.IsNotExist(err) {
			c.dropEntry(url)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if entry.Compressed {
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer r.Close()
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}

	if err := c.touch(url); err != nil {
		slog.Debug("Failed to update access time", "url", url, "error", err)
	}

	return data, nil
}

// Contains reports whether url has a cached content file.
func (c *Cache) Contains(url string) bool {
	ix, err := c.idx.Get()
	if err != nil {
		return false
	}
	if _, ok := ix.Entries[Key(url)]; !ok {
		return false
	}
	_, err = os.Stat(c.path(url))
	return err == nil
}

// Delete removes url's content file and index entry.
func (c *Cache) Delete(url string) error {
	if err := os.Remove(c.path(url)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.dropEntry(url)
}

// Clear removes every cached file and resets the index.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return c.modifyIndex(func(ix *index) error {
		ix.Entries = make(map[string]*Entry)
		ix.Failed = make(map[string]string)
		return nil
	})
}

// MarkFailed records a permanently failing URL with its error text.
func (c *Cache) MarkFailed(url, reason string) error {
	return c.modifyIndex(func(ix *index) error {
		ix.Failed[url] = reason
		return nil
	})
}

// Failed returns the recorded failure reason for url, if any.
func (c *Cache) Failed(url string) (string, bool) {
	ix, err := c.idx.Get()
	if err != nil {
		return "", false
	}
	reason, ok := ix.Failed[url]
	return reason, ok
}

// ClearFailed forgets a recorded failure, letting the next request
// reach the network again.
func (c *Cache) ClearFailed(url string) error {
	return c.modifyIndex(func(ix *index) error {
		delete(ix.Failed, url)
		return nil
	})
}

// Trim evicts entries until the cache fits maxBytes, removing anything
// unused for longer than maxAge first. A zero maxBytes or maxAge
// disables that limit. Returns the number of entries removed.
func (c *Cache) Trim(maxBytes int64, maxAge time.Duration) (int, error) {
	ix, err := c.idx.Get()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var victims []string
	var total int64

	type aged struct {
		key  string
		last time.Time
		size int64
	}
	var live []aged

	for key, e := range ix.Entries {
		if maxAge > 0 && now.Sub(e.LastAccess) > maxAge {
			victims = append(victims, key)
			continue
		}
		total += e.Size
		live = append(live, aged{key: key, last: e.LastAccess, size: e.Size})
	}

	if maxBytes > 0 && total > maxBytes {
		sort.Slice(live, func(i, j int) bool { return live[i].last.Before(live[j].last) })
		for _, a := range live {
			if total <= maxBytes {
				break
			}
			victims = append(victims, a.key)
			total -= a.size
		}
	}

	if len(victims) == 0 {
		return 0, nil
	}

	err = c.modifyIndex(func(ix *index) error {
		for _, key := range victims {
			e, ok := ix.Entries[key]
			if !ok {
				continue
			}
			if err := os.Remove(filepath.Join(c.dir, key)); err != nil && !os.IsNotExist(err) {
				slog.Warn("Failed to remove cache file", "key", key, "error", err)
				continue
			}
			slog.Debug("Evicted cache entry", "url", e.URL, "size", e.Size)
			delete(ix.Entries, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(victims), nil
}

// Usage returns the total stored bytes and the entry count.
func (c *Cache) Usage() (int64, int, error) {
	ix, err := c.idx.Get()
	if err != nil {
		return 0, 0, err
	}
	var total int64
	for _, e := range ix.Entries {
		total += e.Size
	}
	return total, len(ix.Entries), nil
}

// Dir returns the content directory of the cache.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) touch(url string) error {
	return c.modifyIndex(func(ix *index) error {
		if e, ok := ix.Entries[Key(url)]; ok {
			e.LastAccess = time.Now()
		}
		return nil
	})
}

func (c *Cache) dropEntry(url string) error {
	return c.modifyIndex(func(ix *index) error {
		delete(ix.Entries, Key(url))
		return nil
	})
}

// modifyIndex applies fn to the index and persists it under the
// cross-process lock.
func (c *Cache) modifyIndex(fn func(*index) error) error {
	unlock, err := Lock(c.indexPath)
	if err != nil {
		return err
	}
	defer unlock()

	err = c.idx.Modify(func(ix *index) error {
		if ix.Entries == nil {
			ix.Entries = make(map[string]*Entry)
		}
		if ix.Failed == nil {
			ix.Failed = make(map[string]string)
		}
		return fn(ix)
	})
	if err != nil {
		return err
	}
	return c.idx.Save()
}
