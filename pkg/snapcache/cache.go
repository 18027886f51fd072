// Package snapcache memoizes extraction results by frame HTML so repeated polls
// of an unchanged page skip re-parsing.
package snapcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/hourz/pkg/extract"
)

// DefaultTTL is how long an extraction stays valid.
const DefaultTTL = 2 * time.Minute

// Cache maps frame HTML to its extraction result.
type Cache struct {
	cache  *otter.Cache[string, extract.Result]
	logger *slog.Logger
}

// New creates a cache whose entries expire ttl after they are written.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		cache: otter.Must(&otter.Options[string, extract.Result]{
			MaximumSize:      256,
			InitialCapacity:  16,
			ExpiryCalculator: otter.ExpiryWriting[string, extract.Result](ttl),
		}),
		logger: logger,
	}
}

// Key returns the cache key for a frame's HTML.
func Key(html string) string {
	h := sha256.Sum256([]byte(html))
	return hex.EncodeToString(h[:])
}

// Get returns the cached result for html.
func (c *Cache) Get(html string) (extract.Result, bool) {
	r, ok := c.cache.GetIfPresent(Key(html))
	if !ok {
		c.logger.Debug("snapshot cache miss", "bytes", len(html))
	}
	return r, ok
}

// Set stores the result for html.
func (c *Cache) Set(html string, r extract.Result) {
	c.cache.Set(Key(html), r)
}

// Extract returns the extraction of html, parsing it only on a cache miss.
// Parse failures are not cached.
func (c *Cache) Extract(html string) (extract.Result, error) {
	if r, ok := c.Get(html); ok {
		return r, nil
	}
	r, err := extract.FromHTML(strings.NewReader(html))
	if err != nil {
		return r, fmt.Errorf("extracting frame: %w", err)
	}
	c.Set(html, r)
	c.logger.Debug("frame extracted", "source", r.Source, "worked", r.WorkedText, "punches", len(r.Punches))
	return r, nil
}

// Len returns the approximate number of cached frames.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}
