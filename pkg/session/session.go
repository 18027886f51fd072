// Package session owns the refresh cycle: read the page, extract, compute and
// hand back something to render.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/hourz/pkg/browser"
	"github.com/codeGROOVE-dev/hourz/pkg/clock"
	"github.com/codeGROOVE-dev/hourz/pkg/extract"
	"github.com/codeGROOVE-dev/hourz/pkg/report"
	"github.com/codeGROOVE-dev/hourz/pkg/settings"
	"github.com/codeGROOVE-dev/hourz/pkg/snapcache"
)

// User-facing messages for the failure cases.
const (
	MsgNoTab     = "Open the Zoho People attendance page (Summary view)."
	MsgNotFound  = "Could not find today’s worked time. Try: reload the page • switch to Summary mode • scroll to Today."
	msgReadError = "Error reading the page: "
)

// DefaultTimeout bounds one page read.
const DefaultTimeout = 10 * time.Second

// ErrStale is returned when a newer cycle started or the session was
// invalidated while the page was being read.
var ErrStale = errors.New("refresh superseded")

// Notifier receives the remaining seconds after every successful cycle.
// Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, remainingSec int)
}

// Result is one completed cycle.
type Result struct {
	report.View
	Settings settings.Settings `json:"settings"`
}

// Session drives refresh cycles against one page reader.
type Session struct {
	reader       browser.Reader
	cache        *snapcache.Cache
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	settingsPath string
	timeout      time.Duration
	gen          atomic.Uint64
	running      atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where remaining time is announced.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTimeout bounds each page read.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithCache shares an extraction cache.
func WithCache(c *snapcache.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// New creates a session reading pages through reader and settings from settingsPath.
func New(reader browser.Reader, settingsPath string, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		reader:       reader,
		settingsPath: settingsPath,
		logger:       logger,
		now:          time.Now,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = snapcache.New(snapcache.DefaultTTL, logger)
	}
	return s
}

// Invalidate discards the result of any cycle in flight.
func (s *Session) Invalidate() {
	s.gen.Add(1)
}

// TryRefresh runs a cycle unless one is already running; ran is false when
// the call was skipped.
func (s *Session) TryRefresh(ctx context.Context) (r Result, ran bool, err error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("refresh skipped, previous cycle still running")
		return Result{}, false, nil
	}
	defer s.running.Store(false)
	r, err = s.Refresh(ctx)
	return r, true, err
}

// Refresh runs one cycle. Page and extraction failures are reported in the
// view's Err with placeholder numbers; the only error returned is ErrStale.
func (s *Session) Refresh(ctx context.Context) (Result, error) {
	gen := s.gen.Add(1)

	st, err := settings.Load(s.settingsPath)
	if err != nil {
		s.logger.Warn("using default settings", "path", s.settingsPath, "error", err)
	}
	if st.Normalized {
		s.logger.Info("settings normalized", "path", s.settingsPath, "target", st.Target, "office_start", st.OfficeStart)
	}

	res := Result{Settings: st, View: report.View{Target: st.TargetDisplay()}}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	snap, err := s.reader.ReadFrames(readCtx)
	cancel()

	if s.gen.Load() != gen {
		s.logger.Debug("discarding stale page read", "generation", gen)
		return Result{}, ErrStale
	}

	switch {
	case errors.Is(err, browser.ErrNoMatchingTab):
		res.Err = MsgNoTab
		return res, nil
	case err != nil:
		s.logger.Debug("page read failed", "error", err)
		res.Err = msgReadError + err.Error()
		return res, nil
	}

	res.URL = snap.URL
	if snap.URL != "" && !browser.Matches(snap.URL) {
		res.Err = MsgNoTab
		return res, nil
	}

	best := extract.PickBest(s.extractFrames(snap.Frames))
	if !best.Found() {
		res.Err = MsgNotFound
		return res, nil
	}

	nowMinute := clock.MinuteOfDay(s.now())
	worked, err := report.WorkedFrom(best, st.OfficeStartMinute(), nowMinute)
	if err != nil {
		s.logger.Debug("worked time unreadable", "text", best.WorkedText, "error", err)
		res.Err = fmt.Sprintf("Could not read the worked time %q.", best.WorkedText)
		return res, nil
	}

	res.WorkedText = best.WorkedText
	res.WorkedBasis = worked.Basis
	res.Source = best.Source
	res.Pairs = worked.Punches.Pairs
	res.BreakTotalSeconds = worked.Punches.BreakTotalSeconds
	res.Summary = report.Compute(worked.Seconds, st.TargetSeconds(), nowMinute)
	res.Week = report.Week(best.Week, st.TargetSeconds())

	s.logger.Debug("refresh complete",
		"source", best.Source,
		"basis", worked.Basis,
		"worked", worked.Seconds,
		"remaining", res.Summary.RemainingSeconds,
		"punches", len(best.Punches))

	if s.notifier != nil {
		s.notifier.Notify(ctx, res.Summary.RemainingSeconds)
	}
	return res, nil
}

func (s *Session) extractFrames(frames []string) []*extract.Result {
	out := make([]*extract.Result, len(frames))
	for i, html := range frames {
		if html == "" {
			continue
		}
		r, err := s.cache.Extract(html)
		if err != nil {
			s.logger.Debug("frame skipped", "frame", i, "error", err)
			continue
		}
		out[i] = &r
	}
	return out
}
