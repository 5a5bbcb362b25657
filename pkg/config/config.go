package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Defaults for the disk cache budget.
const (
	DefaultMaxDiskBytes = 256 << 20
	DefaultMaxDiskAge   = 7 * 24 * time.Hour
)

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetCacheDir() string
	GetImageDir() string
	GetIndexPath() string
	GetMaxDiskBytes() int64
	GetMaxDiskAge() time.Duration
	GetUserAgent() string
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetCacheDir(string)
	SetMaxDiskBytes(int64)
	SetMaxDiskAge(time.Duration)
	SetUserAgent(string)
}

// Config holds the base directories and cache limits for webimg.
// Mutable
type Config struct {
	cacheDir  string
	imageDir  string
	indexPath string

	maxDiskBytes int64
	maxDiskAge   time.Duration

	userAgent string

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetCacheDir() string          { return c.cacheDir }
func (c *Config) GetImageDir() string          { return c.imageDir }
func (c *Config) GetIndexPath() string         { return c.indexPath }
func (c *Config) GetMaxDiskBytes() int64       { return c.maxDiskBytes }
func (c *Config) GetMaxDiskAge() time.Duration { return c.maxDiskAge }
func (c *Config) GetUserAgent() string         { return c.userAgent }

func (c *Config) SetCacheDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.cacheDir = s
	c.updateDerived()
}

func (c *Config) SetMaxDiskBytes(n int64) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.maxDiskBytes = n
}

func (c *Config) SetMaxDiskAge(d time.Duration) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.maxDiskAge = d
}

func (c *Config) SetUserAgent(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.userAgent = s
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.imageDir = filepath.Join(c.cacheDir, "images")
	c.indexPath = filepath.Join(c.cacheDir, "index.json")
}

// Init initializes the configuration using XDG base directories.
func Init() (ReadOnly, error) {
	c := &Config{
		cacheDir:     filepath.Join(xdg.CacheHome, "webimg"),
		maxDiskBytes: DefaultMaxDiskBytes,
		maxDiskAge:   DefaultMaxDiskAge,
		userAgent:    "webimg/1.0",
	}

	c.updateDerived()

	return c, nil
}
