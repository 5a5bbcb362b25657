package diskcache

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"webimg/pkg/config"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	cfg, err := config.Init()
	if err != nil {
		t.Fatal(err)
	}
	w := cfg.Checkout()
	w.SetCacheDir(t.TempDir())
	w.Freeze()
	return New(w)
}

func TestSetGet(t *testing.T) {
	c := testCache(t)
	data := []byte("fake image bytes")

	if err := c.Set("http://example.com/a.jpg", data, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get("http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Content mismatch: %q", got)
	}

	if _, err := c.Get("http://example.com/missing.jpg"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	c := testCache(t)
	data := bytes.Repeat([]byte("<svg>compressible content</svg>"), 100)

	if err := c.Set("http://example.com/a.svg", data, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get("http://example.com/a.svg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Compressed round trip mismatch")
	}

	// The stored size recorded in the index should be the compressed one.
	total, count, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 entry, got %d", count)
	}
	if total >= int64(len(data)) {
		t.Errorf("Expected compressed size < %d, got %d", len(data), total)
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	c := testCache(t)

	// High-entropy bytes, like a JPEG body: zstd cannot shrink these.
	data := make([]byte, 4096)
	r := rand.New(rand.NewSource(1))
	r.Read(data)

	if err := c.Set("http://example.com/b.jpg", data, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	total, _, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if total != int64(len(data)) {
		t.Errorf("Expected raw storage of %d bytes, index says %d", len(data), total)
	}

	got, err := c.Get("http://example.com/b.jpg")
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("Raw round trip failed: %v", err)
	}
}

func TestSetOverwritesExisting(t *testing.T) {
	c := testCache(t)
	url := "http://example.com/changing.png"

	if err := c.Set(url, []byte("first version"), false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(url, []byte("second version, refreshed"), false); err != nil {
		t.Fatalf("Second Set failed: %v", err)
	}

	got, err := c.Get(url)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("second version, refreshed")) {
		t.Errorf("Expected refreshed content, got %q", got)
	}

	// The index must describe the new bytes, not the old ones.
	total, count, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 entry, got %d", count)
	}
	if total != int64(len("second version, refreshed")) {
		t.Errorf("Index size = %d, want %d", total, len("second version, refreshed"))
	}
}

func TestSetOverwriteFlipsCompression(t *testing.T) {
	c := testCache(t)
	url := "http://example.com/flip.img"

	// First write compresses; the overwrite is high-entropy and stays
	// raw. Get must follow the index's framing for the newest write.
	compressible := bytes.Repeat([]byte("<svg>compressible content</svg>"), 100)
	if err := c.Set(url, compressible, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw := make([]byte, 4096)
	r := rand.New(rand.NewSource(7))
	r.Read(raw)
	if err := c.Set(url, raw, true); err != nil {
		t.Fatalf("Second Set failed: %v", err)
	}

	got, err := c.Get(url)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("Expected raw overwrite to round trip")
	}

	total, _, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if total != int64(len(raw)) {
		t.Errorf("Index size = %d, want %d", total, len(raw))
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := testCache(t)
	c.Set("a", []byte("1"), false)
	c.Set("b", []byte("2"), false)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get("a"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, count, _ := c.Usage(); count != 0 {
		t.Errorf("Expected empty cache after clear, got %d entries", count)
	}
}

func TestFailedURLs(t *testing.T) {
	c := testCache(t)

	c.MarkFailed("http://dead.example.com/x.png", "bad status: 404 Not Found")

	reason, ok := c.Failed("http://dead.example.com/x.png")
	if !ok || reason == "" {
		t.Errorf("Expected recorded failure, got %q ok=%v", reason, ok)
	}

	c.ClearFailed("http://dead.example.com/x.png")
	if _, ok := c.Failed("http://dead.example.com/x.png"); ok {
		t.Errorf("Expected failure cleared")
	}

	// A successful store also clears the failure record.
	c.MarkFailed("u", "boom")
	c.Set("u", []byte("ok"), false)
	if _, ok := c.Failed("u"); ok {
		t.Errorf("Set should clear the failed mark")
	}
}

func TestTrimBySize(t *testing.T) {
	c := testCache(t)

	c.Set("old", bytes.Repeat([]byte("a"), 100), false)
	time.Sleep(10 * time.Millisecond)
	c.Set("new", bytes.Repeat([]byte("b"), 100), false)

	removed, err := c.Trim(150, 0)
	if err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Expected 1 eviction, got %d", removed)
	}

	if _, err := c.Get("old"); err != ErrNotFound {
		t.Errorf("Expected least-recently-used entry evicted")
	}
	if _, err := c.Get("new"); err != nil {
		t.Errorf("Expected newer entry kept, got %v", err)
	}
}

func TestTrimByAge(t *testing.T) {
	c := testCache(t)
	c.Set("a", []byte("x"), false)

	// Everything is younger than an hour; nothing to do.
	removed, err := c.Trim(0, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("Expected no evictions, got %d", removed)
	}

	// An implausibly small age evicts it.
	time.Sleep(5 * time.Millisecond)
	removed, err = c.Trim(0, time.Nanosecond)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 eviction, got %d", removed)
	}
}

func TestIndexHealsMissingFile(t *testing.T) {
	c := testCache(t)
	c.Set("a", []byte("x"), false)

	// Remove the content file behind the index's back.
	if err := os.Remove(filepath.Join(c.Dir(), Key("a"))); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get("a"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
