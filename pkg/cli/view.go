package cli

import (
	"github.com/spf13/cobra"

	"webimg/pkg/tui"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view URL...",
		Short: "Show images in an interactive terminal viewer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			return tui.Run(a.mgr, args)
		},
	}
}
