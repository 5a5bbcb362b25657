package cli

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"webimg/pkg/extract"
)

func newScrapeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scrape PAGEURL",
		Short: "Extract image URLs from an HTML page and prefetch them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			base, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid page URL %q: %w", args[0], err)
			}

			body, err := a.fetchDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			urls, err := extract.PageImages(bytes.NewReader(body), base)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			if len(urls) == 0 {
				a.disp.Print("no images found")
				return nil
			}
			if limit > 0 && len(urls) > limit {
				urls = urls[:limit]
			}

			a.disp.Print(fmt.Sprintf("found %d images on %s", len(urls), args[0]))
			return runPrefetch(cmd.Context(), a, urls)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "fetch at most this many images (0 = all)")
	addPrefetchFlags(cmd)
	return cmd
}
