package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"webimg/pkg/display"
	"webimg/pkg/manager"
)

var (
	flagConcurrency int
	flagRefresh     bool
	flagRetryFailed bool
)

func newPrefetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefetch URL...",
		Short: "Warm the caches for a list of image URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			return runPrefetch(cmd.Context(), a, args)
		},
	}

	addPrefetchFlags(cmd)
	return cmd
}

func addPrefetchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 4, "parallel downloads")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "re-download even when cached")
	cmd.Flags().BoolVar(&flagRetryFailed, "retry-failed", false, "retry URLs that failed before")
}

func prefetchFlags() manager.Flags {
	var flags manager.Flags
	if flagRefresh {
		flags |= manager.RefreshCached
	}
	if flagRetryFailed {
		flags |= manager.RetryFailed
	}
	return flags
}

// runPrefetch fetches urls with a progress line per transfer and
// prints a summary. Failures are reported but do not abort the rest.
func runPrefetch(ctx context.Context, a *app, urls []string) error {
	var mu sync.Mutex
	tasks := make(map[string]display.Task, len(urls))

	hooks := manager.PrefetchHooks{
		OnStart: func(url string) manager.Progress {
			t := a.disp.StartTask(url)
			mu.Lock()
			tasks[url] = t
			mu.Unlock()
			return t.Progress
		},
		OnDone: func(url string, from manager.Source, err error) {
			mu.Lock()
			t, ok := tasks[url]
			mu.Unlock()
			if ok {
				t.Done()
			}
			if err != nil {
				a.disp.Print(fmt.Sprintf("failed %s: %v", url, err))
				return
			}
			a.disp.Log(fmt.Sprintf("fetched %s (%s)", url, from))
		},
	}

	fetched, failed := a.mgr.Prefetch(ctx, urls, flagConcurrency, prefetchFlags(), hooks)

	a.disp.Print(fmt.Sprintf("prefetched %d of %d, %d failed", fetched, len(urls), failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(urls))
	}
	return nil
}
