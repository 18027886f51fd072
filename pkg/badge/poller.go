package badge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/codeGROOVE-dev/hourz/pkg/browser"
	"github.com/codeGROOVE-dev/hourz/pkg/clock"
	"github.com/codeGROOVE-dev/hourz/pkg/extract"
	"github.com/codeGROOVE-dev/hourz/pkg/report"
	"github.com/codeGROOVE-dev/hourz/pkg/settings"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

// DefaultSchedule refreshes the badge once a minute.
const DefaultSchedule = "@every 1m"

const tickTimeout = 20 * time.Second

// Poller keeps the badge in step with any open attendance tab.
type Poller struct {
	tabs         browser.TabReader
	sink         Setter
	cache        *snapcache.Cache
	logger       *slog.Logger
	now          func() time.Time
	settingsPath string
	schedule     string
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithSchedule sets the cron spec, e.g. "@every 30s".
func WithSchedule(spec string) PollerOption {
	return func(p *Poller) { p.schedule = spec }
}

// WithPollerClock replaces time.Now.
func WithPollerClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// WithPollerCache shares an extraction cache.
func WithPollerCache(c *snapcache.Cache) PollerOption {
	return func(p *Poller) { p.cache = c }
}

// NewPoller returns a poller reading tabs and settingsPath and writing to sink.
func NewPoller(tabs browser.TabReader, sink Setter, settingsPath string, logger *slog.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		tabs:         tabs,
		sink:         sink,
		settingsPath: settingsPath,
		logger:       logger,
		now:          time.Now,
		schedule:     DefaultSchedule,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = snapcache.New(snapcache.DefaultTTL, logger)
	}
	return p
}

// Run ticks once immediately and then on the schedule until ctx is done.
// A tick still running when the next is due is skipped.
func (p *Poller) Run(ctx context.Context) error {
	c := cronlib.New(cronlib.WithChain(cronlib.SkipIfStillRunning(cronlib.DiscardLogger)))
	if _, err := c.AddFunc(p.schedule, func() { p.Tick(ctx) }); err != nil {
		return err
	}

	p.Tick(ctx)
	c.Start()
	p.logger.Info("badge poller started", "schedule", p.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	p.logger.Info("badge poller stopped")
	return nil
}

// Tick sets the badge from the first tab that shows today's worked time and
// clears it when no tab does.
func (p *Poller) Tick(ctx context.Context) {
	text, err := p.label(ctx)
	switch {
	case errors.Is(err, browser.ErrNoMatchingTab):
		p.logger.Debug("no attendance tab open")
	case err != nil:
		p.logger.Debug("badge refresh failed", "error", err)
	}
	if err := p.sink.Set(text, Color); err != nil {
		p.logger.Warn("set badge", "text", text, "error", err)
	}
}

func (p *Poller) label(ctx context.Context) (string, error) {
	st, err := settings.Load(p.settingsPath)
	if err != nil {
		p.logger.Warn("using default settings", "path", p.settingsPath, "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()
	snaps, err := p.tabs.ReadTabs(ctx)
	if err != nil {
		return "", err
	}

	nowMinute := clock.MinuteOfDay(p.now())
	for _, snap := range snaps {
		if snap.URL != "" && !browser.Matches(snap.URL) {
			continue
		}
		best := extract.PickBest(p.extract(snap.Frames))
		if !best.Found() {
			continue
		}
		worked, err := report.WorkedFrom(best, st.OfficeStartMinute(), nowMinute)
		if err != nil {
			p.logger.Debug("worked time unreadable", "url", snap.URL, "error", err)
			continue
		}
		remaining := max(0, st.TargetSeconds()-worked.Seconds)
		p.logger.Debug("badge computed", "url", snap.URL, "basis", worked.Basis, "remaining", remaining)
		return report.BadgeLabel(remaining), nil
	}
	return "", nil
}

func (p *Poller) extract(frames []string) []*extract.Result {
	out := make([]*extract.Result, 0, len(frames))
	for _, html := range frames {
		if html == "" {
			continue
		}
		r, err := p.cache.Extract(html)
		if err != nil {
			continue
		}
		out = append(out, &r)
	}
	return out
}
