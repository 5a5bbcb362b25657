package manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"webimg/pkg/config"
	"webimg/pkg/diskcache"
	"webimg/pkg/downloader"
	"webimg/pkg/memcache"
)

// ErrEmptyURL is returned for requests with no URL.
var ErrEmptyURL = errors.New("empty url")

const downloadRetries = 3

// Manager ties the cache tiers and the downloader together.
// Mutable
type Manager struct {
	cfg config.ReadOnly

	mem  *memcache.Cache
	disk *diskcache.Cache

	dl      downloader.Downloader
	retryDl downloader.Downloader

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight

	stats stats
}

// New creates a Manager using the configured cache directory and a
// default downloader.
func New(cfg config.ReadOnly) (*Manager, error) {
	mem, err := memcache.New(0)
	if err != nil {
		return nil, err
	}

	dl := downloader.NewDefaultDownloader(cfg.GetUserAgent())

	return &Manager{
		cfg:     cfg,
		mem:     mem,
		disk:    diskcache.New(cfg),
		dl:      dl,
		retryDl: downloader.NewRetryDownloader(dl, downloadRetries),
		flights: make(map[string]*flight),
	}, nil
}

// Get starts an asynchronous retrieval of url and returns its handle.
// The completion callback fires exactly once, from a manager goroutine;
// callers needing thread affinity must re-dispatch themselves.
func (m *Manager) Get(ctx context.Context, url string, flags Flags, progress Progress, completed Completed) *Operation {
	op := newOperation(ctx, url)

	go func() {
		img, from, err := m.retrieve(op, flags, progress)
		if completed != nil {
			completed(img, err, from, url)
		}
		close(op.done)
		op.cancel()
	}()

	return op
}

// GetSync retrieves url on the calling goroutine.
func (m *Manager) GetSync(ctx context.Context, url string, flags Flags, progress Progress) (image.Image, Source, error) {
	op := newOperation(ctx, url)
	defer func() {
		close(op.done)
		op.cancel()
	}()
	return m.retrieve(op, flags, progress)
}

// QueryMemory looks up url in the memory tier only.
func (m *Manager) QueryMemory(url string) (image.Image, bool) {
	return m.mem.Get(url)
}

// QueryDisk returns the encoded bytes stored for url, if any.
func (m *Manager) QueryDisk(url string) ([]byte, error) {
	return m.disk.Get(url)
}

// Disk exposes the disk tier for maintenance commands.
func (m *Manager) Disk() *diskcache.Cache {
	return m.disk
}

// Memory exposes the memory tier.
func (m *Manager) Memory() *memcache.Cache {
	return m.mem
}

func (m *Manager) retrieve(op *Operation, flags Flags, progress Progress) (image.Image, Source, error) {
	url := op.url
	if url == "" {
		return nil, SourceNone, ErrEmptyURL
	}

	if flags&RefreshCached == 0 {
		if img, ok := m.mem.Get(url); ok {
			m.stats.memHits.Add(1)
			return img, SourceMemory, nil
		}

		if flags&RetryFailed == 0 {
			if reason, ok := m.disk.Failed(url); ok {
				m.stats.failures.Add(1)
				return nil, SourceNone, fmt.Errorf("previously failed: %s", reason)
			}
		}

		if data, err := m.disk.Get(url); err == nil {
			img, _, derr := decode(data)
			if derr == nil {
				m.mem.Add(url, img)
				m.stats.diskHits.Add(1)
				return img, SourceDisk, nil
			}
			// Corrupt entry; drop it and fall through to the network.
			slog.Warn("Dropping undecodable cache entry", "url", url, "error", derr)
			m.disk.Delete(url)
		}
	}

	data, err := m.fetch(op, flags, progress)
	if err != nil {
		m.stats.failures.Add(1)
		if downloader.IsPermanent(err) {
			m.disk.MarkFailed(url, err.Error())
		}
		return nil, SourceNone, err
	}
	m.stats.downloads.Add(1)

	img, format, err := decode(data)
	if err != nil {
		m.stats.failures.Add(1)
		err = fmt.Errorf("decode %s: %w", url, err)
		m.disk.MarkFailed(url, err.Error())
		return nil, SourceNone, err
	}

	m.mem.Add(url, img)
	if flags&CacheMemoryOnly == 0 {
		if err := m.disk.Set(url, data, true); err != nil {
			slog.Warn("Failed to persist image", "url", url, "error", err)
		}
	} else {
		m.disk.ClearFailed(url)
	}

	slog.Debug("Fetched image", "op", op.id, "url", url, "format", format, "bytes", len(data))
	return img, SourceNetwork, nil
}

// fetch downloads url, coalescing concurrent requests for the same URL
// into a single transfer unless HighPriority asks for a dedicated one.
func (m *Manager) fetch(op *Operation, flags Flags, progress Progress) ([]byte, error) {
	dl := m.dl
	if flags&RetryFailed != 0 {
		dl = m.retryDl
	}

	if flags&HighPriority != 0 {
		var buf bytes.Buffer
		if err := dl.Download(op.ctx, op.url, &buf, progress); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	// A shared fetch can be cancelled by its last leaving subscriber
	// just as a fresh operation joins it. Retry once in that case so
	// the newcomer is not penalized for someone else's cancel.
	for attempt := 0; ; attempt++ {
		data, err := m.fetchShared(op, dl, progress)
		if err != nil && errors.Is(err, context.Canceled) && op.ctx.Err() == nil && attempt == 0 {
			continue
		}
		return data, err
	}
}

func (m *Manager) fetchShared(op *Operation, dl downloader.Downloader, progress Progress) ([]byte, error) {
	url := op.url

	m.mu.Lock()
	f, ok := m.flights[url]
	if !ok {
		f = newFlight()
		m.flights[url] = f
	}
	f.subscribe(op.id, progress)
	m.mu.Unlock()
	defer f.leave(op.id)

	ch := m.group.DoChan(url, func() (interface{}, error) {
		defer func() {
			m.mu.Lock()
			if m.flights[url] == f {
				delete(m.flights, url)
			}
			m.mu.Unlock()
		}()

		var buf bytes.Buffer
		if err := dl.Download(f.ctx, url, &buf, f.broadcast); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			m.stats.shared.Add(1)
		}
		return res.Val.([]byte), nil
	case <-op.ctx.Done():
		return nil, op.ctx.Err()
	}
}
