package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/hourz/pkg/report"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

func newCheckCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Read the page once and print today's numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := o.logger()
			res, err := o.session(logger, snapcache.New(snapcache.DefaultTTL, logger)).Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
			} else if err := report.Render(cmd.OutOrStdout(), res.View, res.Settings.Compact); err != nil {
				return err
			}
			if !res.OK() {
				// 2: nothing usable was read.
				os.Exit(2)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
