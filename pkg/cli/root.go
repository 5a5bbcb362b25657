// Package cli builds the webimg command tree.
package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"webimg/pkg/config"
	"webimg/pkg/display"
	"webimg/pkg/downloader"
	"webimg/pkg/manager"
)

var (
	flagVerbose  bool
	flagCacheDir string
)

// app bundles the managers every command needs.
// Immutable
type app struct {
	cfg  config.ReadOnly
	mgr  *manager.Manager
	disp display.Display
}

func newApp() (*app, error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	if flagCacheDir != "" {
		cfg.Checkout().SetCacheDir(flagCacheDir)
	}
	cfg.Freeze()

	mgr, err := manager.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing image manager: %w", err)
	}

	disp := display.NewConsole()
	disp.SetVerbose(flagVerbose)

	return &app{cfg: cfg, mgr: mgr, disp: disp}, nil
}

func (a *app) close() {
	a.disp.Close()
}

// fetchDocument grabs a non-image resource (HTML page, JSON feed).
func (a *app) fetchDocument(ctx context.Context, rawurl string) ([]byte, error) {
	dl := downloader.NewDefaultDownloader(a.cfg.GetUserAgent())
	var buf bytes.Buffer
	if err := dl.Download(ctx, rawurl, &buf, nil); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawurl, err)
	}
	return buf.Bytes(), nil
}

// NewRootCmd assembles the full command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webimg",
		Short:         "Fetch, cache and view remote images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "override the cache directory")

	root.AddCommand(
		newViewCmd(),
		newPrefetchCmd(),
		newScrapeCmd(),
		newFeedCmd(),
		newCacheCmd(),
	)

	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
