// Package manager owns the image retrieval pipeline: memory cache,
// disk cache, network download with de-duplication, decoding, and
// cache population. View adapters sit in front of it and only deal
// with callbacks and URLs.
package manager

import (
	"image"

	"webimg/pkg/downloader"
)

// Flags adjust how a single retrieval behaves.
type Flags uint32

const (
	// RetryFailed ignores the failed-URL record and retries transient
	// transport errors with backoff.
	RetryFailed Flags = 1 << iota
	// RefreshCached skips both cache tiers and always hits the network.
	RefreshCached
	// CacheMemoryOnly keeps the result out of the disk tier.
	CacheMemoryOnly
	// HighPriority gives the request a dedicated download instead of
	// sharing an in-flight fetch for the same URL.
	HighPriority
)

// Source tells a completion callback which tier produced the image.
type Source int

const (
	SourceNone Source = iota
	SourceMemory
	SourceDisk
	SourceNetwork
)

func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceDisk:
		return "disk"
	case SourceNetwork:
		return "network"
	default:
		return "none"
	}
}

// Progress receives byte counts while a network fetch is running.
// Cache hits produce no progress events.
type Progress = downloader.Progress

// Completed receives the final outcome of a retrieval. Exactly one of
// img and err is meaningful; url is always the requested URL.
type Completed func(img image.Image, err error, from Source, url string)
