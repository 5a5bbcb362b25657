package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the disk cache",
	}

	cmd.AddCommand(newCacheInfoCmd(), newCacheCleanCmd())
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show disk cache location and usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			size, entries, err := a.mgr.Disk().Usage()
			if err != nil {
				return fmt.Errorf("reading cache index: %w", err)
			}

			a.disp.Print(fmt.Sprintf("cache directory: %s", a.cfg.GetCacheDir()))
			a.disp.Print(fmt.Sprintf("entries:         %d", entries))
			a.disp.Print(fmt.Sprintf("size:            %s of %s budget",
				humanize.Bytes(uint64(size)),
				humanize.Bytes(uint64(a.cfg.GetMaxDiskBytes()))))
			a.disp.Print(fmt.Sprintf("max age:         %s", a.cfg.GetMaxDiskAge()))
			return nil
		},
	}
}

func newCacheCleanCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Evict expired and over-budget entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if all {
				if err := a.mgr.Disk().Clear(); err != nil {
					return fmt.Errorf("clearing cache: %w", err)
				}
				a.disp.Print("cache cleared")
				return nil
			}

			removed, err := a.mgr.Disk().Trim(a.cfg.GetMaxDiskBytes(), a.cfg.GetMaxDiskAge())
			if err != nil {
				return fmt.Errorf("trimming cache: %w", err)
			}
			a.disp.Print(fmt.Sprintf("evicted %d entries", removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "delete every cached image")
	return cmd
}
