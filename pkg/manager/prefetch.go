package manager

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PrefetchHooks observes a running prefetch. Both fields may be nil.
type PrefetchHooks struct {
	// OnStart returns the progress sink for a URL, or nil.
	OnStart func(url string) Progress
	// OnDone is called once per URL with the outcome.
	OnDone func(url string, from Source, err error)
}

// Prefetch warms the caches for urls, fetching at most concurrency at
// a time. A failing URL does not stop the rest. Returns the number of
// successful and failed fetches.
func (m *Manager) Prefetch(ctx context.Context, urls []string, concurrency int, flags Flags, hooks PrefetchHooks) (int, int) {
	if concurrency <= 0 {
		concurrency = 4
	}

	var fetched, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}

			var progress Progress
			if hooks.OnStart != nil {
				progress = hooks.OnStart(url)
			}

			_, from, err := m.GetSync(ctx, url, flags, progress)
			if err != nil {
				failed.Add(1)
			} else {
				fetched.Add(1)
			}
			if hooks.OnDone != nil {
				hooks.OnDone(url, from, err)
			}
			return nil
		})
	}

	g.Wait()
	return int(fetched.Load()), int(failed.Load())
}
