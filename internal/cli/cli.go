package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/buildinfo"
	"github.com/matzehuels/worktime/pkg/cache"
	"github.com/matzehuels/worktime/pkg/config"
	"github.com/matzehuels/worktime/pkg/httputil"
	"github.com/matzehuels/worktime/pkg/observability"
	"github.com/matzehuels/worktime/pkg/store"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "worktime"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	stderr     io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Worktime tracks time spent in work modes",
		Long:         `Worktime records which mode you are in (work, play, ...), keeps running totals per era and shows ratios and recent history on the command line, in a terminal dashboard and on a small web page.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.NewLogHooks(c.Logger).Register()
			}
			c.stderr = cmd.ErrOrStderr()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/worktime/config.toml)")

	root.AddCommand(c.switchCommand())
	root.AddCommand(c.stopCommand())
	root.AddCommand(c.adjustCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.eraCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.settingCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.arrangeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration and Backends
// =============================================================================

// config loads the configuration once per CLI.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// openTracker opens the configured store and returns a tracker on it. The
// returned function closes the store.
func (c *CLI) openTracker(ctx context.Context) (*worktime.Tracker, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger := loggerFromContext(ctx)
	logger.Debug("opened store", "driver", cfg.Storage.Driver)

	t := worktime.New(s, worktime.ConfigFrom(cfg.Tracker), worktime.WithLogger(logger))
	closeFn := func() {
		if err := s.Close(); err != nil {
			logger.Warn("close store", "err", err)
		}
	}
	return t, closeFn, nil
}

// openCache opens the configured layout cache, falling back to no caching
// when the backend cannot be opened.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	cfg, err := c.config()
	if err != nil || noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(cfg.Cache)
	if err != nil {
		loggerFromContext(ctx).Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// newClient creates a client for the worktime server at url, or at the
// configured server URL when url is empty.
func (c *CLI) newClient(url string) (*httputil.Client, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = cfg.Server.URL
	}
	hc, err := httputil.NewCache(cfg.Cache.HTTPDir(), 0)
	if err != nil {
		hc = nil
	}
	return httputil.NewClient(url, hc)
}
