package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/codeGROOVE-dev/retry"
)

// DefaultDevToolsURL is where Chrome listens when started with
// --remote-debugging-port=9222.
const DefaultDevToolsURL = "http://127.0.0.1:9222"

// framesScript collects the outer HTML of the document and, depth first, of
// every nested frame. Cross-origin frames throw or return null on access and
// are reported as "".
const framesScript = `(() => {
  const out = [];
  const walk = (doc) => {
    out.push(doc && doc.documentElement ? doc.documentElement.outerHTML : "");
    if (!doc) return;
    for (const f of doc.querySelectorAll("iframe, frame")) {
      let child = null;
      try { child = f.contentDocument; } catch (e) { child = null; }
      if (child) { walk(child); } else { out.push(""); }
    }
  };
  walk(document);
  return out;
})()`

var errNoPages = errors.New("browser reports no page targets")

// Chrome reads tabs from a running Chrome through its DevTools endpoint.
type Chrome struct {
	logger   *slog.Logger
	url      string
	attempts uint
}

// NewChrome returns a reader for the DevTools endpoint at url.
func NewChrome(url string, logger *slog.Logger) *Chrome {
	if url == "" {
		url = DefaultDevToolsURL
	}
	return &Chrome{url: url, logger: logger, attempts: 4}
}

// ReadFrames reads the first open Zoho People tab.
func (c *Chrome) ReadFrames(ctx context.Context) (Snapshot, error) {
	snaps, err := c.read(ctx, true)
	if err != nil {
		return Snapshot{}, err
	}
	return snaps[0], nil
}

// ReadTabs reads every open Zoho People tab. Tabs that fail to read are
// skipped; an error is returned only if none could be read.
func (c *Chrome) ReadTabs(ctx context.Context) ([]Snapshot, error) {
	return c.read(ctx, false)
}

func (c *Chrome) read(ctx context.Context, firstOnly bool) ([]Snapshot, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, c.url)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	tabs, err := c.matchingTabs(browserCtx)
	if err != nil {
		return nil, err
	}
	if firstOnly {
		tabs = tabs[:1]
	}

	var snaps []Snapshot
	var lastErr error
	for _, tab := range tabs {
		frames, err := c.readTab(browserCtx, tab.TargetID)
		if err != nil {
			if firstOnly {
				return nil, err
			}
			c.logger.Debug("skipping unreadable tab", "url", tab.URL, "error", err)
			lastErr = err
			continue
		}
		c.logger.Debug("read tab", "url", tab.URL, "frames", len(frames))
		snaps = append(snaps, Snapshot{URL: tab.URL, Frames: frames})
	}
	if len(snaps) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return snaps, nil
}

// matchingTabs lists page targets on a Zoho People host. A freshly attached
// browser can briefly report no targets, so listing is retried.
func (c *Chrome) matchingTabs(ctx context.Context) ([]*target.Info, error) {
	var infos []*target.Info
	var lastErr error
	err := retry.Do(
		func() error {
			infos, lastErr = chromedp.Targets(ctx)
			if lastErr != nil {
				return lastErr
			}
			for _, info := range infos {
				if info.Type == "page" {
					return nil
				}
			}
			lastErr = errNoPages
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying target listing", "attempt", n+1, "devtools", c.url, "error", err)
		}),
	)
	if errors.Is(lastErr, errNoPages) {
		return nil, ErrNoMatchingTab
	}
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("listing tabs at %s: %w", c.url, lastErr)
	}

	var tabs []*target.Info
	for _, info := range infos {
		if info.Type == "page" && Matches(info.URL) {
			tabs = append(tabs, info)
		}
	}
	if len(tabs) == 0 {
		return nil, ErrNoMatchingTab
	}
	return tabs, nil
}

// readTab attaches to an existing tab, collects its frames and detaches,
// leaving the tab open.
func (c *Chrome) readTab(parent context.Context, id target.ID) ([]string, error) {
	tabCtx, cancel := chromedp.NewContext(parent, chromedp.WithTargetID(id))
	defer cancel()
	defer detach(tabCtx, c.logger)

	var frames []string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(framesScript, &frames)); err != nil {
		return nil, fmt.Errorf("reading tab: %w", err)
	}
	return frames, nil
}

// detach ends the DevTools session on a tab we attached to. chromedp closes
// any target still attached when its context is cancelled, which would close
// the user's tab, so the session is detached here and the target forgotten.
func detach(tabCtx context.Context, logger *slog.Logger) {
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil || c.Browser == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(tabCtx), time.Second)
	defer cancel()
	if err := target.DetachFromTarget().WithSessionID(c.Target.SessionID).Do(cdp.WithExecutor(ctx, c.Browser)); err != nil {
		logger.Debug("detaching from tab", "error", err)
	}
	c.Target = nil
}
