package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (c *CLI) watchCommand() *cobra.Command {
	var (
		remote   bool
		url      string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live dashboard",
		Long: `Show a live dashboard of the current mode, totals, ratios and the
history bar. Press a mode's number or key to switch to it, 0 to stop,
r to refresh and q to quit.

The dashboard polls for a fresh summary while the autoupdate setting is on.
The age of the shown summary fades as it gets stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var source summarySource
			if remote {
				client, err := c.newClient(url)
				if err != nil {
					return err
				}
				source = client
			} else {
				t, closeStore, err := c.openTracker(ctx)
				if err != nil {
					return err
				}
				defer closeStore()
				source = trackerSource{t: t}
			}

			m := newDashboardModel(ctx, source, interval)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "watch a worktime server instead of the local store")
	cmd.Flags().StringVar(&url, "url", "", "server URL (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", defaultPollInterval, "poll interval")

	return cmd
}
