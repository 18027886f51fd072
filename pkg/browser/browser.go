// Package browser reads the rendered attendance page out of a browser tab the
// user already has open.
package browser

import (
	"context"
	"errors"
	"regexp"
)

// HostPattern matches Zoho People URLs on any regional domain.
var HostPattern = regexp.MustCompile(`^https://people\.zoho\.[^/]+/`)

// ErrNoMatchingTab means no open tab is on a Zoho People page.
var ErrNoMatchingTab = errors.New("no Zoho People tab is open")

// Matches reports whether url is on a Zoho People host.
func Matches(url string) bool {
	return HostPattern.MatchString(url)
}

// Snapshot is the HTML of one tab, one string per frame. The top document
// comes first; a frame that could not be read is an empty string.
type Snapshot struct {
	URL    string   `json:"url"`
	Frames []string `json:"frames"`
}

// Reader returns the frames of the tab to extract from.
type Reader interface {
	ReadFrames(ctx context.Context) (Snapshot, error)
}

// TabReader returns the frames of every matching tab.
type TabReader interface {
	ReadTabs(ctx context.Context) ([]Snapshot, error)
}
