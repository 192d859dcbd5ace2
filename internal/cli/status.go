package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// Status output formats.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatPlain = "plain"
)

type statusOptions struct {
	format  string
	numbers string
	remote  bool
	url     string
}

func (c *CLI) statusCommand() *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current mode, totals and ratios",
		Example: `  worktime status
  worktime status --format plain
  worktime status --format json --numbers values
  worktime status --remote --url http://worktime.local:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json, plain")
	cmd.Flags().StringVar(&opts.numbers, "numbers", string(worktime.NumbersText), "number encoding for json: text, values")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "read the summary from a worktime server")
	cmd.Flags().StringVar(&opts.url, "url", "", "server URL (default from config)")

	return cmd
}

func (c *CLI) runStatus(ctx context.Context, w io.Writer, opts statusOptions) error {
	numbers, err := worktime.ParseNumbers(opts.numbers)
	if err != nil {
		return err
	}
	switch opts.format {
	case formatText, formatJSON, formatPlain:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "format must be text, json or plain, got %q", opts.format)
	}

	var summary *worktime.Summary
	if opts.remote {
		summary, err = c.remoteSummary(ctx, opts.url, numbers)
	} else {
		summary, err = c.localSummary(ctx, numbers)
	}
	if err != nil {
		return err
	}

	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case formatPlain:
		if err := worktime.WritePlain(w, summary); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	default:
		_, err := fmt.Fprintln(w, renderSummary(summary))
		return err
	}
}

func (c *CLI) localSummary(ctx context.Context, numbers worktime.Numbers) (*worktime.Summary, error) {
	t, closeStore, err := c.openTracker(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return t.Summary(ctx, numbers)
}

func (c *CLI) remoteSummary(ctx context.Context, url string, numbers worktime.Numbers) (*worktime.Summary, error) {
	if numbers != worktime.NumbersText {
		return nil, errors.New(errors.ErrCodeUnsupported, "remote summaries use text numbers")
	}
	client, err := c.newClient(url)
	if err != nil {
		return nil, err
	}

	stderr := c.stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	spinner := newSpinner(ctx, stderr, "Fetching summary from "+client.BaseURL())
	spinner.Start()
	summary, err := client.Summary(ctx)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return nil, ctx.Err()
		}
		last, at, ok := client.LastSummary()
		if !ok {
			spinner.StopWithError("Could not fetch summary from " + client.BaseURL())
			return nil, err
		}
		spinner.StopWithError("Server unreachable, showing summary from " + at.Format("15:04:05"))
		return last, nil
	}
	spinner.StopWithSuccess("Fetched summary from " + client.BaseURL())
	return summary, nil
}

// renderSummary formats a summary for the terminal.
func renderSummary(s *worktime.Summary) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(s.CurrentMode))
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(s.CurrentElapsed.String()))
	if s.Era != "" {
		b.WriteString(StyleDim.Render("  era " + s.Era))
	}
	b.WriteString("\n")

	for _, e := range s.Elapsed {
		b.WriteString(fmt.Sprintf("  %s %s\n", styleKey.Render(e.Mode), StyleValue.Render(e.Time.String())))
	}
	if s.RatioStr != "" {
		parts := make([]string, len(s.Ratios))
		for i, r := range s.Ratios {
			parts[i] = r.Timespan + " " + StyleNumber.Render(r.Value.String())
		}
		b.WriteString(fmt.Sprintf("  %s %s", styleKey.Render(s.RatioStr), strings.Join(parts, StyleDim.Render(" · "))))
	}
	return strings.TrimRight(b.String(), "\n")
}
