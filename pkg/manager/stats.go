package manager

import "sync/atomic"

type stats struct {
	memHits   atomic.Int64
	diskHits  atomic.Int64
	downloads atomic.Int64
	shared    atomic.Int64
	failures  atomic.Int64
}

// Stats is a point-in-time snapshot of manager counters.
type Stats struct {
	MemoryHits      int64
	DiskHits        int64
	Downloads       int64
	SharedDownloads int64
	Failures        int64
}

// Stats returns the current counters.
func (m *Manager) Stats() Stats {
	return Stats{
		MemoryHits:      m.stats.memHits.Load(),
		DiskHits:        m.stats.diskHits.Load(),
		Downloads:       m.stats.downloads.Load(),
		SharedDownloads: m.stats.shared.Load(),
		Failures:        m.stats.failures.Load(),
	}
}
