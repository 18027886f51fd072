// Package report turns worked seconds into the numbers shown to the user:
// remaining time, overtime, a severity class, the badge label and the week
// table.
package report

import (
	"regexp"
	"strconv"

	"github.com/codeGROOVE-dev/hourz/pkg/clock"
	"github.com/codeGROOVE-dev/hourz/pkg/extract"
	"github.com/codeGROOVE-dev/hourz/pkg/punch"
)

// Placeholder is shown in place of any number that could not be computed.
const Placeholder = "—"

// LeaveText replaces the signed delta of a weekend day.
const LeaveText = "(Leave)"

// WarnSeconds is the remaining time at or below which the day is nearly done.
const WarnSeconds = 30 * 60

// Severity classifies remaining time for display styling.
type Severity string

// Severities, from done to far off.
const (
	SeverityOK     Severity = "ok"
	SeverityWarn   Severity = "warn"
	SeverityDanger Severity = "danger"
)

var weekendPattern = regexp.MustCompile(`(?i)^\s*(sat|sun)\b`)

// Summary is the computed state of today.
type Summary struct {
	Severity         Severity `json:"severity"`
	Badge            string   `json:"badge"`
	ETA              string   `json:"eta"`
	WorkedSeconds    int      `json:"worked_seconds"`
	TargetSeconds    int      `json:"target_seconds"`
	RemainingSeconds int      `json:"remaining_seconds"`
	OvertimeSeconds  int      `json:"overtime_seconds"`
}

// Compute derives remaining, overtime, severity, badge and ETA from worked and
// target seconds at nowMinute.
func Compute(workedSec, targetSec, nowMinute int) Summary {
	delta := targetSec - workedSec
	remaining := max(0, delta)
	return Summary{
		WorkedSeconds:    workedSec,
		TargetSeconds:    targetSec,
		RemainingSeconds: remaining,
		OvertimeSeconds:  max(0, -delta),
		Severity:         Classify(remaining),
		Badge:            BadgeLabel(remaining),
		ETA:              clock.FormatETA(nowMinute, remaining),
	}
}

// BadgeLabel renders remaining seconds as whole hours rounded up, e.g. "2h".
// Nothing left renders as an empty label.
func BadgeLabel(remainingSec int) string {
	if remainingSec <= 0 {
		return ""
	}
	return strconv.Itoa((remainingSec+3599)/3600) + "h"
}

// Classify maps remaining seconds to a severity.
func Classify(remainingSec int) Severity {
	switch {
	case remainingSec <= 0:
		return SeverityOK
	case remainingSec <= WarnSeconds:
		return SeverityWarn
	default:
		return SeverityDanger
	}
}

// Worked-time bases.
const (
	BasisPunches   = "punches"
	BasisPageTotal = "page-total"
)

// Worked is today's worked time and how it was derived.
type Worked struct {
	Seconds int
	Basis   string
	Punches punch.Result
}

// WorkedFrom derives worked seconds from an extraction. When the row had
// punches it is their sum clamped to [officeStart, now]; otherwise it is the
// page's own total.
func WorkedFrom(r *extract.Result, officeStart, nowMinute int) (Worked, error) {
	pairs := punch.Pair(r.Punches)
	if len(r.Punches) > 0 {
		return Worked{
			Seconds: punch.Worked(pairs.Pairs, officeStart, nowMinute),
			Basis:   BasisPunches,
			Punches: pairs,
		}, nil
	}
	sec, err := clock.ParseHMS(r.WorkedText)
	if err != nil {
		return Worked{}, err
	}
	return Worked{Seconds: sec, Basis: BasisPageTotal, Punches: pairs}, nil
}

// IsWeekend reports whether a week-table label names a Saturday or Sunday.
func IsWeekend(label string) bool {
	return weekendPattern.MatchString(label)
}

// DayRow is one rendered day of the week table.
type DayRow struct {
	Label         string `json:"label"`
	WorkedText    string `json:"worked_text"`
	Net           string `json:"net"`
	WorkedSeconds int    `json:"worked_seconds"`
	TargetSeconds int    `json:"target_seconds"`
	NetSeconds    int    `json:"net_seconds"`
	Leave         bool   `json:"leave"`
}

// WeekSummary is the week table plus its totals.
type WeekSummary struct {
	Days          []DayRow `json:"days"`
	WorkedSeconds int      `json:"worked_seconds"`
	TargetSeconds int      `json:"target_seconds"`
	NetSeconds    int      `json:"net_seconds"`
}

// Net returns the signed total, e.g. "+01:15:00".
func (w WeekSummary) Net() string {
	return clock.FormatSigned(w.NetSeconds)
}

// Week aggregates up to extract.MaxWeekDays days. Weekend days are leave days
// with no target. A worked value that does not parse counts as zero.
func Week(days []extract.Day, targetSec int) WeekSummary {
	if len(days) > extract.MaxWeekDays {
		days = days[:extract.MaxWeekDays]
	}

	w := WeekSummary{Days: make([]DayRow, 0, len(days))}
	for _, d := range days {
		worked := 0
		if d.WorkedText != "" {
			if sec, err := clock.ParseHMS(d.WorkedText); err == nil {
				worked = sec
			}
		}
		row := DayRow{
			Label:         d.Label,
			WorkedText:    d.WorkedText,
			WorkedSeconds: worked,
			TargetSeconds: targetSec,
		}
		if row.WorkedText == "" {
			row.WorkedText = "00:00"
		}
		if IsWeekend(d.Label) {
			row.Leave = true
			row.TargetSeconds = 0
		}
		row.NetSeconds = row.WorkedSeconds - row.TargetSeconds
		if row.Leave {
			row.Net = LeaveText
		} else {
			row.Net = "(" + clock.FormatSigned(row.NetSeconds) + ")"
		}

		w.WorkedSeconds += row.WorkedSeconds
		w.TargetSeconds += row.TargetSeconds
		w.Days = append(w.Days, row)
	}
	w.NetSeconds = w.WorkedSeconds - w.TargetSeconds
	return w
}
