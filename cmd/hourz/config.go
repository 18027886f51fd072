package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/hourz/pkg/settings"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the settings in effect",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := settings.Load(o.settingsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", o.settingsPath)
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close() //nolint:errcheck // stdout
				return enc.Encode(st)
			},
		},
		updateCmd(o, "set-target HH:MM", "Set the daily target ("+strings.Join(settings.TargetChoices(), ", ")+")",
			func(st *settings.Settings, v string) error { return st.SetTarget(v) }),
		updateCmd(o, "set-office-start HH:MM", "Set the time before which work is not counted",
			func(st *settings.Settings, v string) error { return st.SetOfficeStart(v) }),
		updateCmd(o, "compact on|off", "Print a single line instead of the full report",
			func(st *settings.Settings, v string) error { return setSwitch(&st.Compact, v) }),
		updateCmd(o, "auto-refresh on|off", "Refresh on a timer in watch mode",
			func(st *settings.Settings, v string) error { return setSwitch(&st.AutoRefresh, v) }),
	)
	return cmd
}

// updateCmd builds a one-argument command that loads, changes and saves settings.
func updateCmd(o *options, use, short string, apply func(*settings.Settings, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := settings.Load(o.settingsPath)
			if err != nil {
				return err
			}
			if err := apply(&st, args[0]); err != nil {
				return err
			}
			if err := settings.Save(o.settingsPath, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", o.settingsPath)
			return nil
		},
	}
}

func setSwitch(dst *bool, v string) error {
	switch strings.ToLower(v) {
	case "on", "true", "yes":
		*dst = true
	case "off", "false", "no":
		*dst = false
	default:
		return fmt.Errorf("want on or off, got %q", v)
	}
	return nil
}
