package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/worktime"
)

func (c *CLI) settingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setting [<name> on|off]",
		Short: "Show or change settings",
		Long: `Show or change settings. Without arguments all settings are listed.

Settings:
  autoupdate  front ends poll for fresh summaries`,
		Example: `  worktime setting
  worktime setting autoupdate off`,
		ValidArgs: worktime.KnownSettings(),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, closeStore, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if len(args) == 2 {
				on, err := parseSwitch(args[1])
				if err != nil {
					return err
				}
				if err := t.SetSetting(ctx, args[0], on); err != nil {
					return err
				}
				printSuccess("%s %s %s", args[0], iconArrow, onOff(on))
				return nil
			}

			settings, err := t.Settings(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(settings))
			for name := range settings {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				printKeyValue(name, onOff(settings[name]))
			}
			return nil
		},
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
