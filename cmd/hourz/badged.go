package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/hourz/pkg/badge"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

func newBadgedCmd(o *options) *cobra.Command {
	var (
		schedule   string
		statusFile string
	)
	cmd := &cobra.Command{
		Use:   "badged",
		Short: "Keep the hours-left badge current in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := o.logger()
			state := badge.NewState()
			sink := badge.Setters{state}
			if statusFile != "" {
				sink = append(sink, badge.StatusFile{Path: statusFile})
			}

			poller := badge.NewPoller(o.reader(logger), sink, o.settingsPath, logger,
				badge.WithSchedule(schedule),
				badge.WithPollerCache(snapcache.New(snapcache.DefaultTTL, logger)))
			server := badge.NewServer(state, sink, logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return server.ListenAndServe(ctx, o.badgeAddr) })
			g.Go(func() error { return poller.Run(ctx) })
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", badge.DefaultSchedule, "Cron spec for tab polling")
	cmd.Flags().StringVar(&statusFile, "status-file", "", "Also write the badge text to this file")
	return cmd
}
