package config

import (
	"path/filepath"
	"testing"
)

func TestDerivedPathsFollowCacheDir(t *testing.T) {
	cfg, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	w := cfg.Checkout()
	w.SetCacheDir("/tmp/webimg-test")

	if got := cfg.GetImageDir(); got != filepath.Join("/tmp/webimg-test", "images") {
		t.Errorf("image dir = %q", got)
	}
	if got := cfg.GetIndexPath(); got != filepath.Join("/tmp/webimg-test", "index.json") {
		t.Errorf("index path = %q", got)
	}
}

func TestFreezePreventsWrites(t *testing.T) {
	cfg, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	w := cfg.Checkout()
	cfg.Freeze()

	defer func() {
		if recover() == nil {
			t.Error("expected panic writing to frozen config")
		}
	}()
	w.SetUserAgent("other")
}

func TestDefaults(t *testing.T) {
	cfg, err := Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if cfg.GetMaxDiskBytes() != DefaultMaxDiskBytes {
		t.Errorf("max disk bytes = %d", cfg.GetMaxDiskBytes())
	}
	if cfg.GetMaxDiskAge() != DefaultMaxDiskAge {
		t.Errorf("max disk age = %v", cfg.GetMaxDiskAge())
	}
	if cfg.GetUserAgent() == "" {
		t.Error("user agent should have a default")
	}
}
