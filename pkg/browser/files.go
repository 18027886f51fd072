package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Files serves saved HTML files as the frames of one tab, in order.
// It is used for offline checks and when the page was saved from the browser.
type Files struct {
	URL   string
	Paths []string
}

// ReadFrames reads every file. A file that cannot be read becomes an empty
// frame, matching how unreadable frames look in a live tab.
func (f Files) ReadFrames(ctx context.Context) (Snapshot, error) {
	if len(f.Paths) == 0 {
		return Snapshot{}, errors.New("no html files given")
	}
	snap := Snapshot{URL: f.URL, Frames: make([]string, 0, len(f.Paths))}
	read := 0
	for _, p := range f.Paths {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			snap.Frames = append(snap.Frames, "")
			continue
		}
		read++
		snap.Frames = append(snap.Frames, string(data))
	}
	if read == 0 {
		return Snapshot{}, fmt.Errorf("reading %s: none of the html files could be read", f.Paths[0])
	}
	return snap, nil
}

// ReadTabs returns the files as a single tab.
func (f Files) ReadTabs(ctx context.Context) ([]Snapshot, error) {
	snap, err := f.ReadFrames(ctx)
	if err != nil {
		return nil, err
	}
	return []Snapshot{snap}, nil
}
