// Package clock converts between the textual time forms found on attendance
// pages and plain integer minutes/seconds.
// Times of day are minutes since midnight (0-1439); durations are whole seconds.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// Minus is the sign glyph used for negative deltas.
const Minus = "−"

var (
	twelveHourPattern = regexp.MustCompile(`(?i)(\d+):(\d+)\s?(AM|PM)`)
	punchTokenPattern = regexp.MustCompile(`(?i)\b(0?\d|1[0-2]):[0-5]\d\s?(AM|PM)\b`)
	hhmmPattern       = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ErrBadDuration is returned for duration text that is not H:MM or H:MM:SS.
var ErrBadDuration = errors.New("invalid duration")

// MinuteOf12h converts the first "H:MM AM/PM" token in s to minutes since midnight.
// Examples:
//   - "09:15 AM" returns 555
//   - "12:05 am" returns 5
//   - "1:30PM" returns 810
func MinuteOf12h(s string) (int, bool) {
	m := twelveHourPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	h %= 12
	if strings.EqualFold(m[3], "PM") {
		h += 12
	}
	total := h*60 + mins
	if total < 0 || total >= MinutesPerDay {
		return 0, false
	}
	return total, true
}

// Normalize12h returns the first well-formed 12-hour punch token in s, uppercased.
func Normalize12h(s string) (string, bool) {
	tok := punchTokenPattern.FindString(s)
	if tok == "" {
		return "", false
	}
	return strings.ToUpper(tok), true
}

// ParseHMS parses "H:MM" or "H:MM:SS" into seconds.
func ParseHMS(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
		}
		nums[i] = n
	}
	secs := nums[0]*3600 + nums[1]*60
	if len(nums) == 3 {
		secs += nums[2]
	}
	return secs, nil
}

// FormatHMS renders seconds as zero-padded HH:MM:SS.
// Hours grow past two digits rather than wrapping; negative input is formatted
// by absolute value.
func FormatHMS(sec int) string {
	if sec < 0 {
		sec = -sec
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// FormatSigned renders a delta as +HH:MM:SS or −HH:MM:SS.
func FormatSigned(sec int) string {
	if sec >= 0 {
		return "+" + FormatHMS(sec)
	}
	return Minus + FormatHMS(sec)
}

// ParseHHMM parses a 24-hour "HH:MM" time of day into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	m := hhmmPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, _ := strconv.Atoi(m[1])  //nolint:errcheck // digits guaranteed by pattern
	mm, _ := strconv.Atoi(m[2]) //nolint:errcheck // digits guaranteed by pattern
	if h > 23 || mm > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*60 + mm, nil
}

// FormatHHMM renders minutes since midnight as 24-hour "HH:MM".
func FormatHHMM(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// FormatETA returns the wall-clock time reached after remainingSec from nowMinute,
// as "h:MM AM/PM". Partial minutes round up; times past midnight wrap around
// the 12-hour dial.
func FormatETA(nowMinute, remainingSec int) string {
	total := nowMinute + (remainingSec+59)/60
	total = ((total % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	h24 := total / 60
	suffix := "AM"
	if h24 >= 12 {
		suffix = "PM"
	}
	h12 := h24 % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, total%60, suffix)
}

// MinuteOfDay returns t's local minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
