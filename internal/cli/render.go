package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/render"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// Render output formats.
const (
	renderSVG  = "svg"
	renderPNG  = "png"
	renderText = "text"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format string
	output string  // output file path, stdout when empty
	width  float64 // bar width in pixels (cells for text)
	scale  float64 // PNG pixel density
	remote bool
	url    string
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: renderSVG, scale: 2}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the history bar with its adjustment labels",
		Long: `Draw the history bar with its adjustment labels.

The bar shows the periods of the history window, right-aligned, with one
label per adjustment above it. Labels are spaced out so they do not overlap.`,
		Example: `  worktime render -o history.svg
  worktime render --format png --width 800 -o history.png
  worktime render --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "bar width in pixels, or cells for text (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "pixel density of png output")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "read the summary from a worktime server")
	cmd.Flags().StringVar(&opts.url, "url", "", "server URL (default from config)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, opts renderOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	var measure []render.BarOption
	switch opts.format {
	case renderSVG:
		measure = []render.BarOption{render.WithMeasurer(render.GlyphWidth(cfg.Server.GlyphWidth))}
	case renderPNG:
		measure = []render.BarOption{render.WithMeasurer(render.GGMeasurer())}
	case renderText:
		measure = render.TerminalOptions()
		if opts.width == 0 {
			opts.width = terminalWidth()
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "format must be svg, png or text, got %q", opts.format)
	}
	if opts.width == 0 {
		opts.width = cfg.Server.BarWidth
	}
	if opts.width <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width must be positive")
	}

	var summary *worktime.Summary
	if opts.remote {
		summary, err = c.remoteSummary(ctx, opts.url, worktime.NumbersText)
	} else {
		summary, err = c.localSummary(ctx, worktime.NumbersText)
	}
	if err != nil {
		return err
	}

	p := newProgress(loggerFromContext(ctx))
	barOpts := append([]render.BarOption{render.WithArrangeOptions(cfg.Arrange.Options()...)}, measure...)
	bar := render.NewBar(ctx, summary.History, opts.width, barOpts...)
	palette := render.NewPalette(summary.Modes)

	var data []byte
	switch opts.format {
	case renderSVG:
		data = render.RenderSVG(bar, palette, render.WithTitle())
	case renderPNG:
		data, err = render.RenderPNG(bar, palette, render.WithScale(opts.scale))
		if err != nil {
			return err
		}
	case renderText:
		data = []byte(render.RenderTerminal(bar, palette) + "\n")
	}
	if !bar.Converged {
		printWarning("Labels still overlap after %d passes", bar.Passes)
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	p.done("Rendered history bar")
	printFile(opts.output)
	return nil
}

// defaultTerminalWidth is used when stdout is not a terminal.
const defaultTerminalWidth = 60

// terminalWidth returns the usable width of the terminal on stdout.
func terminalWidth() float64 {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 4 {
		return defaultTerminalWidth
	}
	return float64(w - 4)
}
