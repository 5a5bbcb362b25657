package memcache

import (
	"fmt"
	"image"
	"testing"
)

func newImg(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestAddGet(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	img := newImg(10, 10)
	c.Add("http://example.com/a.png", img)

	got, ok := c.Get("http://example.com/a.png")
	if !ok || got != img {
		t.Errorf("Expected cached image back, got %v ok=%v", got, ok)
	}

	if _, ok := c.Get("http://example.com/missing.png"); ok {
		t.Errorf("Expected miss for unknown URL")
	}
}

func TestCostEviction(t *testing.T) {
	// Budget fits exactly two 10x10 images (400 bytes each).
	c, err := New(800)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Add("a", newImg(10, 10))
	c.Add("b", newImg(10, 10))
	c.Add("c", newImg(10, 10)) // must evict "a"

	if _, ok := c.Get("a"); ok {
		t.Errorf("Expected oldest entry evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("Expected newest entry present")
	}
	if c.CurrentCost() > 800 {
		t.Errorf("Cost %d exceeds budget", c.CurrentCost())
	}
}

func TestReplaceSameURL(t *testing.T) {
	c, _ := New(1 << 20)

	c.Add("a", newImg(10, 10))
	c.Add("a", newImg(20, 20))

	if c.Len() != 1 {
		t.Errorf("Expected single entry, got %d", c.Len())
	}
	if c.CurrentCost() != 20*20*4 {
		t.Errorf("Expected cost of replacement only, got %d", c.CurrentCost())
	}
}

func TestPurge(t *testing.T) {
	c, _ := New(1 << 20)
	for i := 0; i < 5; i++ {
		c.Add(fmt.Sprintf("u%d", i), newImg(4, 4))
	}

	c.Purge()

	if c.Len() != 0 || c.CurrentCost() != 0 {
		t.Errorf("Expected empty cache, len=%d cost=%d", c.Len(), c.CurrentCost())
	}
}

func TestOversizedSingleEntryKept(t *testing.T) {
	c, _ := New(100)
	c.Add("big", newImg(50, 50))

	if _, ok := c.Get("big"); !ok {
		t.Errorf("A single oversized entry should not evict itself")
	}
}
