package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/worktime"
)

func (c *CLI) switchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <mode>",
		Short: "Switch to a mode",
		Long: `Switch to a mode. The running period ends and its time is credited to
the mode that was running. Switching to None stops tracking.`,
		Example: `  worktime switch w
  worktime switch None`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeModes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSwitch(cmd, args[0])
		},
	}
}

// completeModes offers the configured modes for shell completion.
func (c *CLI) completeModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.config()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return append(slices.Clone(cfg.Tracker.Modes), worktime.NoMode), cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) stopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSwitch(cmd, worktime.NoMode)
		},
	}
}

func (c *CLI) runSwitch(cmd *cobra.Command, mode string) error {
	ctx := cmd.Context()
	t, closeStore, err := c.openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := t.SwitchMode(ctx, mode)
	if err != nil {
		return err
	}

	printSuccess("%s %s %s", displayMode(res.From), iconArrow, StyleHighlight.Render(displayMode(res.To)))
	if res.From != "" {
		printDetail("%s credited to %s", worktime.TimeString(res.Elapsed), res.From)
	}
	return nil
}

func (c *CLI) adjustCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <mode>(+|-)<minutes>...",
		Short: "Add or subtract minutes from mode totals",
		Long: `Add or subtract minutes from mode totals. Totals never go below zero.
Every adjustment is shown in the history.`,
		Example: `  worktime adjust p+20
  worktime adjust w-15 p+15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			specs, err := worktime.ParseAdjustments(args, t.Modes())
			if err != nil {
				return err
			}
			results, err := t.ApplyAdjustments(ctx, specs)
			for _, res := range results {
				printSuccess("%s %s %s total %s", res.Mode, signedTime(res.Delta), iconArrow, StyleNumber.Render(worktime.TimeString(res.Total)))
			}
			return err
		},
	}
}

func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [description]",
		Short: "Archive the current era and start a new one",
		Long: `Archive the current era and start a new one. Totals start from zero
and no mode is running afterwards. Archived eras can be resumed with
"worktime era switch".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			era, err := t.Clear(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printSuccess("Started era %d", era.ID)
			printNextStep("Earlier eras", "worktime era list")
			return nil
		},
	}
}

func (c *CLI) eraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "era",
		Short: "List and switch eras",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived eras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			eras, err := t.Eras(ctx)
			if err != nil {
				return err
			}
			if len(eras) == 0 {
				printInfo("No archived eras")
				return nil
			}
			for _, e := range eras {
				printKeyValue(strconvID(e.ID), e.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "switch <id>",
		Short: "Resume an archived era",
		Long: `Resume an archived era. The current era is archived. A running mode
keeps running in the resumed era.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEraID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := t.SwitchEra(ctx, id); err != nil {
				return err
			}
			printSuccess("Switched to era %d", id)
			return nil
		},
	})

	return cmd
}
