package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/internal/server"
	"github.com/matzehuels/worktime/pkg/cache"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front end and JSON API",
		Long: `Serve the web front end and JSON API.

Endpoints:
  GET  /              summary as html, json or plain (?format=, ?numbers=)
  POST /switch        switch mode (mode)
  POST /adjust        adjust a total (mode, add or subtract minutes)
  POST /clear         start a new unnamed era
  POST /switchera     resume an era (era) or start a named one (newEra)
  POST /settings      change settings (name=on|off)
  POST /api/arrange   lay out label boxes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			layoutCache := c.openCache(ctx, noCache)
			defer layoutCache.Close()
			if fc, ok := layoutCache.(*cache.FileCache); ok {
				if n, err := fc.Prune(ctx); err == nil && n > 0 {
					loggerFromContext(ctx).Debug("pruned cache", "entries", n)
				}
			}

			opts := server.OptionsFrom(cfg)
			if addr != "" {
				opts.Addr = addr
			}
			opts.Cache = layoutCache
			opts.Logger = loggerFromContext(ctx)

			srv, err := server.New(t, opts)
			if err != nil {
				return err
			}
			printInfo("Serving on %s", StyleLink.Render(opts.Addr))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}
