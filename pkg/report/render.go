package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/hourz/pkg/clock"
	"github.com/codeGROOVE-dev/hourz/pkg/punch"
)

// View is everything one refresh cycle produced for display.
// When Err is set the numeric fields are meaningless and render as Placeholder.
type View struct {
	URL               string          `json:"url,omitempty"`
	Target            string          `json:"target"`
	WorkedText        string          `json:"worked_text,omitempty"`
	WorkedBasis       string          `json:"worked_basis,omitempty"`
	Source            string          `json:"source,omitempty"`
	Err               string          `json:"error,omitempty"`
	Pairs             []punch.Segment `json:"pairs,omitempty"`
	Week              WeekSummary     `json:"week"`
	Summary           Summary         `json:"summary"`
	BreakTotalSeconds int             `json:"break_total_seconds"`
}

// OK reports whether the view carries computed numbers.
func (v View) OK() bool {
	return v.Err == ""
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SeverityOK:
		return color.New(color.FgGreen)
	case SeverityWarn:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// Render writes v to w. Compact mode prints a single line.
func Render(w io.Writer, v View, compact bool) error {
	var out string
	if compact {
		out = renderCompact(v)
	} else {
		out = renderFull(v)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func renderCompact(v View) string {
	if !v.OK() {
		return fmt.Sprintf("%s worked · %s left · %s\n", Placeholder, Placeholder, color.New(color.FgRed).Sprint(v.Err))
	}
	s := v.Summary
	left := severityColor(s.Severity).Sprint(clock.FormatHMS(s.RemainingSeconds))
	line := fmt.Sprintf("%s worked · %s left · done %s", clock.FormatHMS(s.WorkedSeconds), left, s.ETA)
	if s.OvertimeSeconds > 0 {
		line += " · " + color.New(color.FgGreen).Sprint("+"+clock.FormatHMS(s.OvertimeSeconds))
	}
	return line + "\n"
}

func renderFull(v View) string {
	var b strings.Builder
	dim := color.New(color.FgHiBlack)
	row := func(label, value string) {
		fmt.Fprintf(&b, "%-10s %s\n", label, value)
	}

	row("Target", v.Target)

	if !v.OK() {
		row("Worked", Placeholder)
		row("Remaining", Placeholder)
		row("Done at", Placeholder)
		row("Breaks", Placeholder)
		row("Punches", Placeholder)
		if v.URL != "" {
			b.WriteString(dim.Sprint(v.URL) + "\n")
		}
		b.WriteString(color.New(color.FgRed).Sprint(v.Err) + "\n")
		return b.String()
	}

	s := v.Summary
	worked := clock.FormatHMS(s.WorkedSeconds)
	if v.WorkedBasis != "" {
		worked += " " + dim.Sprintf("(%s)", v.WorkedBasis)
	}
	row("Worked", worked)
	row("Remaining", severityColor(s.Severity).Sprint(clock.FormatHMS(s.RemainingSeconds)))
	if s.OvertimeSeconds > 0 {
		row("Overtime", color.New(color.FgGreen).Sprint("+"+clock.FormatHMS(s.OvertimeSeconds)))
	}
	row("Done at", s.ETA)

	breaks := Placeholder
	if len(v.Pairs) > 0 {
		breaks = clock.FormatHMS(v.BreakTotalSeconds)
	}
	row("Breaks", breaks)

	if len(v.Pairs) == 0 {
		row("Punches", Placeholder)
	} else {
		b.WriteString("Punches\n")
		for _, p := range v.Pairs {
			b.WriteString("  " + punchRow(p) + "\n")
		}
	}

	if len(v.Week.Days) > 0 {
		b.WriteString("\nWeek\n")
		for _, d := range v.Week.Days {
			net := d.Net
			switch {
			case d.Leave:
				net = dim.Sprint(net)
			case d.NetSeconds >= 0:
				net = color.New(color.FgGreen).Sprint(net)
			default:
				net = color.New(color.FgRed).Sprint(net)
			}
			fmt.Fprintf(&b, "  %-12s %8s %s\n", d.Label, d.WorkedText, net)
		}
		totalColor := color.New(color.FgGreen)
		if v.Week.NetSeconds < 0 {
			totalColor = color.New(color.FgRed)
		}
		fmt.Fprintf(&b, "  %-12s %s\n", "Week worked", clock.FormatHMS(v.Week.WorkedSeconds))
		fmt.Fprintf(&b, "  %-12s %s\n", "Week target", clock.FormatHMS(v.Week.TargetSeconds))
		fmt.Fprintf(&b, "  %-12s %s\n", "Net overtime", totalColor.Sprint(v.Week.Net()))
	}

	b.WriteString("\n")
	if v.Source != "" {
		b.WriteString(dim.Sprintf("Source: %s", v.Source) + "\n")
	}
	if v.URL != "" {
		b.WriteString(dim.Sprint(v.URL) + "\n")
	}
	return b.String()
}

// punchRow renders "gap | IN time — OUT time" with Placeholder for missing parts.
func punchRow(p punch.Segment) string {
	gap := Placeholder
	if p.GapSeconds > 0 {
		gap = clock.FormatHMS(p.GapSeconds)
	}
	return fmt.Sprintf("%8s | %s %s %s", gap, tag(punch.In, p.In), Placeholder, tag(punch.Out, p.Out))
}

func tag(kind punch.Kind, e *punch.Event) string {
	if e == nil || e.Time == "" {
		return Placeholder
	}
	c := color.New(color.FgGreen)
	if kind == punch.Out {
		c = color.New(color.FgYellow)
	}
	return c.Sprint(string(kind)) + " " + e.Time
}
