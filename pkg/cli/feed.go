package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"webimg/pkg/extract"
)

func newFeedCmd() *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed JSONURL",
		Short: "Extract image URLs from a JSON feed and prefetch them",
		Long: `Fetches a JSON document and runs a jq expression over it to pull
out image URLs, then warms the caches for each one.

Example:
  webimg feed https://example.com/photos.json --query '.items[].image_url'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			body, err := a.fetchDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			urls, err := extract.FeedImages(body, query)
			if err != nil {
				return fmt.Errorf("extracting from %s: %w", args[0], err)
			}
			if len(urls) == 0 {
				a.disp.Print("no image URLs matched the query")
				return nil
			}
			if limit > 0 && len(urls) > limit {
				urls = urls[:limit]
			}

			a.disp.Print(fmt.Sprintf("feed yielded %d image URLs", len(urls)))
			return runPrefetch(cmd.Context(), a, urls)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", ".[]", "jq expression selecting the image URLs")
	cmd.Flags().IntVar(&limit, "limit", 0, "fetch at most this many images (0 = all)")
	addPrefetchFlags(cmd)
	return cmd
}
