// Package main implements the hourz CLI: how much of today's work target is
// left, read from the Zoho People attendance page open in Chrome.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/hourz/pkg/badge"
	"github.com/codeGROOVE-dev/hourz/pkg/browser"
	"github.com/codeGROOVE-dev/hourz/pkg/session"
	"github.com/codeGROOVE-dev/hourz/pkg/settings"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

const appVersion = "1.4.0"

// Environment fallbacks for flags left unset.
const (
	envDevTools  = "HOURZ_DEVTOOLS_URL"
	envBadgeAddr = "HOURZ_BADGE_ADDR"
)

type options struct {
	devTools     string
	settingsPath string
	badgeAddr    string
	files        []string
	verbose      bool
}

func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&options{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "hourz",
		Short:         "Time left on today's Zoho People work target",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return o.resolve()
		},
	}
	root.SetVersionTemplate("hourz v{{.Version}}\n")

	f := root.PersistentFlags()
	f.StringVar(&o.devTools, "devtools", "", "Chrome DevTools URL (or set "+envDevTools+")")
	f.StringArrayVar(&o.files, "file", nil, "Read a saved HTML frame instead of Chrome (repeatable)")
	f.StringVar(&o.settingsPath, "settings", "", "Settings file (or set "+settings.EnvPath+")")
	f.StringVar(&o.badgeAddr, "badge-addr", "", "Badge daemon address (or set "+envBadgeAddr+")")
	f.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(
		newCheckCmd(o),
		newWatchCmd(o),
		newBadgedCmd(o),
		newConfigCmd(o),
		newInspectCmd(o),
	)
	return root
}

// resolve fills unset flags from the environment and defaults.
func (o *options) resolve() error {
	if o.devTools == "" {
		o.devTools = os.Getenv(envDevTools)
	}
	if o.devTools == "" {
		o.devTools = browser.DefaultDevToolsURL
	}
	if o.badgeAddr == "" {
		o.badgeAddr = os.Getenv(envBadgeAddr)
	}
	if o.badgeAddr == "" {
		o.badgeAddr = badge.DefaultAddr
	}
	if o.settingsPath == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return err
		}
		o.settingsPath = p
	}
	return nil
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// reader returns the saved files when --file is given, Chrome otherwise.
func (o *options) reader(logger *slog.Logger) interface {
	browser.Reader
	browser.TabReader
} {
	if len(o.files) > 0 {
		return browser.Files{Paths: o.files}
	}
	return browser.NewChrome(o.devTools, logger)
}

func (o *options) session(logger *slog.Logger, cache *snapcache.Cache) *session.Session {
	return session.New(o.reader(logger), o.settingsPath, logger,
		session.WithCache(cache),
		session.WithNotifier(badge.NewNotifier(o.badgeAddr, logger)))
}
