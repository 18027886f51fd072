package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	cronlib "github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/hourz/pkg/report"
	"github.com/codeGROOVE-dev/hourz/pkg/session"
	"github.com/codeGROOVE-dev/hourz/pkg/settings"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

const settingsDebounce = 100 * time.Millisecond

func newWatchCmd(o *options) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep today's numbers on screen; Enter refreshes, Ctrl-C quits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s, got %s", interval)
			}
			logger := o.logger()
			w := &watcher{
				sess:         o.session(logger, snapcache.New(snapcache.DefaultTTL, logger)),
				settingsPath: o.settingsPath,
				out:          os.Stdout,
				logger:       logger,
			}
			return w.run(cmd.Context(), interval, os.Stdin)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Auto-refresh interval while auto_refresh is on")
	return cmd
}

type watcher struct {
	sess         *session.Session
	out          io.Writer
	logger       *slog.Logger
	settingsPath string
	mu           sync.Mutex
}

func (w *watcher) run(ctx context.Context, interval time.Duration, in io.Reader) error {
	c := cronlib.New(cronlib.WithChain(cronlib.SkipIfStillRunning(cronlib.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}

	fw, err := w.watchSettings(ctx)
	if err != nil {
		w.logger.Warn("settings changes will not trigger a refresh", "error", err)
	} else {
		defer fw.Close() //nolint:errcheck // shutting down
	}

	go w.readEnter(ctx, in)

	w.refresh(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// tick is the scheduled refresh; it honours auto_refresh and yields to a
// cycle already in flight.
func (w *watcher) tick(ctx context.Context) {
	st, err := settings.Load(w.settingsPath)
	if err == nil && !st.AutoRefresh {
		return
	}
	res, ran, err := w.sess.TryRefresh(ctx)
	if !ran {
		return
	}
	w.show(res, err)
}

// refresh runs a cycle now, superseding any in flight.
func (w *watcher) refresh(ctx context.Context) {
	res, err := w.sess.Refresh(ctx)
	w.show(res, err)
}

func (w *watcher) show(res session.Result, err error) {
	if errors.Is(err, session.ErrStale) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, color.New(color.FgHiBlack).Sprint(time.Now().Format("15:04:05")))
	if err := report.Render(w.out, res.View, res.Settings.Compact); err != nil {
		w.logger.Error("render failed", "error", err)
	}
}

func (w *watcher) readEnter(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		w.refresh(ctx)
	}
}

func (w *watcher) watchSettings(ctx context.Context) (*fsnotify.Watcher, error) {
	dir := filepath.Dir(w.settingsPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close() //nolint:errcheck // add error takes precedence
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Base(w.settingsPath)
	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.sess.Invalidate()
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(settingsDebounce, func() {
					w.logger.Debug("settings changed, refreshing", "path", w.settingsPath)
					w.refresh(ctx)
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("settings watcher", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return fw, nil
}
