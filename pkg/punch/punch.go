// Package punch pairs clock-in/clock-out events into work segments and sums
// worked time over them.
package punch

import (
	"sort"

	"github.com/codeGROOVE-dev/hourz/pkg/clock"
)

// Kind is the direction of a punch.
type Kind string

// Punch kinds.
const (
	In  Kind = "IN"
	Out Kind = "OUT"
)

// Event is a single detected clock punch.
type Event struct {
	Time   string `json:"time"`   // 12-hour text, uppercased, e.g. "09:15 AM"
	Minute int    `json:"minute"` // minutes since midnight
	Kind   Kind   `json:"kind"`
	Order  int    `json:"order"` // discovery order; tie-break at equal Minute
}

// Valid reports whether the event can take part in pairing.
func (e Event) Valid() bool {
	return (e.Kind == In || e.Kind == Out) && e.Minute >= 0 && e.Minute < clock.MinutesPerDay
}

// Segment is one work interval. In is nil for a leading OUT; Out is nil while
// still clocked in.
type Segment struct {
	In         *Event `json:"in,omitempty"`
	Out        *Event `json:"out,omitempty"`
	GapSeconds int    `json:"gap_seconds"` // idle time since the previous OUT
}

// Open reports whether the segment has no OUT yet.
func (s Segment) Open() bool {
	return s.In != nil && s.Out == nil
}

// Result is the output of Pair.
type Result struct {
	Pairs             []Segment `json:"pairs"`
	BreakTotalSeconds int       `json:"break_total_seconds"`
}

// Sorted returns the valid events of events in pairing order: ascending minute,
// IN before OUT at the same minute, then discovery order.
func Sorted(events []Event) []Event {
	seq := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Valid() {
			seq = append(seq, e)
		}
	}
	sort.SliceStable(seq, func(i, j int) bool {
		a, b := seq[i], seq[j]
		if a.Minute != b.Minute {
			return a.Minute < b.Minute
		}
		if a.Kind != b.Kind {
			return a.Kind == In
		}
		return a.Order < b.Order
	})
	return seq
}

// Pair turns an unordered event list into ordered segments plus the total
// break time. Invalid events are ignored.
//
// Two INs without an OUT between them close the first as an open segment.
// An OUT with no pending IN becomes a segment with a nil In.
func Pair(events []Event) Result {
	seq := Sorted(events)

	var (
		pairs      []Segment
		openIn     *Event
		lastOut    = -1
		breakTotal int
		pendingOut = -1
	)

	gapSince := func(in *Event) int {
		if lastOut >= 0 && in.Minute > lastOut {
			return (in.Minute - lastOut) * 60
		}
		return 0
	}

	for i := range seq {
		e := &seq[i]
		switch e.Kind {
		case In:
			if pendingOut >= 0 && e.Minute > pendingOut {
				breakTotal += (e.Minute - pendingOut) * 60
				pendingOut = -1
			}
			if openIn != nil {
				pairs = append(pairs, Segment{In: openIn, GapSeconds: gapSince(openIn)})
			}
			openIn = e
		case Out:
			pendingOut = e.Minute
			if openIn != nil {
				pairs = append(pairs, Segment{In: openIn, Out: e, GapSeconds: gapSince(openIn)})
				openIn = nil
			} else {
				pairs = append(pairs, Segment{Out: e})
			}
			lastOut = e.Minute
		}
	}

	if openIn != nil {
		pairs = append(pairs, Segment{In: openIn, GapSeconds: gapSince(openIn)})
	}

	return Result{Pairs: pairs, BreakTotalSeconds: breakTotal}
}

// Worked sums segment durations in seconds, clamped to [windowStart, now].
// A segment without In starts at windowStart; one without Out ends at now.
func Worked(segments []Segment, windowStart, now int) int {
	total := 0
	for _, s := range segments {
		if s.In == nil && s.Out == nil {
			continue
		}
		start, end := windowStart, now
		if s.In != nil {
			start = s.In.Minute
		}
		if s.Out != nil {
			end = s.Out.Minute
		}
		start = max(start, windowStart)
		end = min(end, now)
		if end > start {
			total += (end - start) * 60
		}
	}
	return total
}

// Events flattens segments back into their events, in segment order.
func Events(segments []Segment) []Event {
	var out []Event
	for _, s := range segments {
		if s.In != nil {
			out = append(out, *s.In)
		}
		if s.Out != nil {
			out = append(out, *s.Out)
		}
	}
	return out
}

// Count returns how many events the segments reference.
func Count(segments []Segment) int {
	return len(Events(segments))
}
