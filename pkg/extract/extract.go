// Package extract pulls today's worked time, punches and the recent week out of
// a rendered Zoho People attendance page.
//
// The page markup is not ours and changes between product versions, so every
// lookup is an ordered list of strategies where the first success wins. New
// page quirks are handled by adding a strategy, not by editing existing ones.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/hourz/pkg/clock"
	"github.com/codeGROOVE-dev/hourz/pkg/punch"
)

// Source tags reported to the user.
const (
	SourceTodayTable    = "today-row:table"
	SourceTodayFallback = "today-row:fallback"
	SourcePageWide      = "page-wide"
	SourceNotFound      = "not-found"
)

// MaxWeekDays is how many rows the week walk visits, the located row included.
const MaxWeekDays = 7

// cellOrderBase offsets cell-sourced punches so they sort after dot-sourced
// punches at the same minute.
const cellOrderBase = 1000

const (
	timeHMS    = `\b\d{1,2}:\d{2}(?::\d{2})?\b`
	hoursToken = `\b(?:hrs(?:\s*worked)?|hours?|heures|stunden|std\.?|horas|ore)\b`
)

var (
	hoursTokenPattern = regexp.MustCompile(`(?i)` + hoursToken)
	timeHMSPattern    = regexp.MustCompile(timeHMS)
	workedPattern     = regexp.MustCompile(`(?i)(` + timeHMS + `)\s*` + hoursToken)
	todayPattern      = regexp.MustCompile(`(?i)\btoday\b`)
	checkInPattern    = regexp.MustCompile(`(?i)check[\s-]?in`)
	checkOutPattern   = regexp.MustCompile(`(?i)check[\s-]?out`)
	zeroWorkedPattern = regexp.MustCompile(`^0{1,2}:?0{2}`)
	digitPattern      = regexp.MustCompile(`\d`)
)

// Day is one row of the week table.
type Day struct {
	Label      string `json:"label"`
	WorkedText string `json:"worked,omitempty"`
}

// Result is what one frame of the page yielded. An empty WorkedText means
// nothing usable was found.
type Result struct {
	WorkedText string        `json:"worked_text,omitempty"`
	Punches    []punch.Event `json:"punches"`
	Week       []Day         `json:"week"`
	Source     string        `json:"source"`
}

// Found reports whether the frame produced a worked value.
func (r *Result) Found() bool {
	return r != nil && r.WorkedText != ""
}

// RowLocator finds the table row holding today's attendance.
type RowLocator struct {
	Find func(doc *goquery.Document) *goquery.Selection
	Name string
}

// WorkedStrategy reads a worked-time value from a located row.
type WorkedStrategy func(row *goquery.Selection) (string, bool)

// Locators returns the default row locators in priority order.
func Locators() []RowLocator {
	return []RowLocator{
		{Name: SourceTodayTable, Find: findCurrentDayRow},
		{Name: SourceTodayFallback, Find: findLabelledTodayRow},
	}
}

// WorkedStrategies returns the default worked-time strategies in priority order.
func WorkedStrategies() []WorkedStrategy {
	return []WorkedStrategy{workedFromLabelledBlock, workedFromBlockText, workedFromRowText}
}

// Extractor runs the strategy chains against a document.
type Extractor struct {
	locators []RowLocator
	worked   []WorkedStrategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLocators replaces the row locator chain.
func WithLocators(locators ...RowLocator) Option {
	return func(e *Extractor) {
		e.locators = locators
	}
}

// WithWorkedStrategies replaces the worked-time chain.
func WithWorkedStrategies(strategies ...WorkedStrategy) Option {
	return func(e *Extractor) {
		e.worked = strategies
	}
}

// New returns an Extractor with the default chains, modified by opts.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		locators: Locators(),
		worked:   WorkedStrategies(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default extractor.
func Extract(doc *goquery.Document) Result {
	return defaultExtractor.Extract(doc)
}

// FromHTML parses r and runs the default extractor.
func FromHTML(r io.Reader) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{Source: SourceNotFound}, fmt.Errorf("parsing page html: %w", err)
	}
	return Extract(doc), nil
}

// Extract locates today's row and reads worked time, punches and the week.
// A located row without a worked value falls through to the next locator.
func (e *Extractor) Extract(doc *goquery.Document) Result {
	for _, loc := range e.locators {
		row := loc.Find(doc)
		if row == nil || row.Length() == 0 {
			continue
		}
		worked := e.Worked(row)
		if worked == "" {
			continue
		}
		return Result{
			WorkedText: worked,
			Punches:    Punches(row),
			Week:       e.Week(row),
			Source:     loc.Name,
		}
	}

	if m := workedPattern.FindStringSubmatch(doc.Find("body").Text()); m != nil {
		return Result{WorkedText: m[1], Punches: []punch.Event{}, Week: []Day{}, Source: SourcePageWide}
	}

	return Result{Punches: []punch.Event{}, Week: []Day{}, Source: SourceNotFound}
}

// WorkedOnly returns the worked value of the first located row, without the
// page-wide fallback. It is the cheap read used for badge polling.
func (e *Extractor) WorkedOnly(doc *goquery.Document) string {
	row, _ := e.Row(doc)
	if row == nil {
		return ""
	}
	return e.Worked(row)
}

// WorkedOnly runs the default extractor's worked-only read.
func WorkedOnly(doc *goquery.Document) string {
	return defaultExtractor.WorkedOnly(doc)
}

// Row returns the first row any locator finds, with the locator's name.
func (e *Extractor) Row(doc *goquery.Document) (*goquery.Selection, string) {
	for _, loc := range e.locators {
		if row := loc.Find(doc); row != nil && row.Length() > 0 {
			return row.First(), loc.Name
		}
	}
	return nil, SourceNotFound
}

// RowHTML returns the outer HTML of the row the default locators find.
func RowHTML(doc *goquery.Document) (string, string, error) {
	row, name := defaultExtractor.Row(doc)
	if row == nil {
		return "", name, nil
	}
	s, err := goquery.OuterHtml(row)
	if err != nil {
		return "", name, fmt.Errorf("rendering row: %w", err)
	}
	return s, name, nil
}

// Worked applies the worked-time strategies to row; first success wins.
func (e *Extractor) Worked(row *goquery.Selection) string {
	for _, strategy := range e.worked {
		if v, ok := strategy(row); ok {
			return v
		}
	}
	return ""
}

// Week walks back from row through its preceding sibling rows.
func (e *Extractor) Week(row *goquery.Selection) []Day {
	days := []Day{}
	for ptr := row.First(); ptr.Length() > 0 && len(days) < MaxWeekDays; ptr = ptr.Prev() {
		label := "Today"
		if len(days) > 0 {
			label = dayLabel(ptr, len(days))
		}
		days = append(days, Day{Label: label, WorkedText: e.Worked(ptr)})
	}
	return days
}

func dayLabel(row *goquery.Selection, n int) string {
	fields := strings.Fields(row.Find("td, th").First().Text())
	if len(fields) == 0 {
		return fmt.Sprintf("D-%d", n)
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}

func findCurrentDayRow(doc *goquery.Document) *goquery.Selection {
	return doc.Find("tr.today-active, tr.zpl_crntday").First()
}

func findLabelledTodayRow(doc *goquery.Document) *goquery.Selection {
	return doc.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		if todayPattern.MatchString(tr.AttrOr("aria-label", "")) {
			return true
		}
		cell := strings.TrimSpace(tr.Find("td, th").First().Text())
		return todayPattern.MatchString(cell)
	}).First()
}

// workedFromLabelledBlock reads the value of the last entry block whose <em>
// label is an hours token. Later blocks carry totals rather than subtotals.
func workedFromLabelledBlock(row *goquery.Selection) (string, bool) {
	blocks := row.Find(".zpl_attentrydtls")
	for i := blocks.Length() - 1; i >= 0; i-- {
		block := blocks.Eq(i)
		label := strings.TrimSpace(block.Find("em").First().Text())
		if !hoursTokenPattern.MatchString(label) {
			continue
		}
		v := strings.TrimSpace(block.Find("b, strong, time").First().Text())
		if m := timeHMSPattern.FindString(v); m != "" {
			return m, true
		}
	}
	return "", false
}

func workedFromBlockText(row *goquery.Selection) (string, bool) {
	blocks := row.Find(".zpl_attentrydtls")
	for i := blocks.Length() - 1; i >= 0; i-- {
		if m := workedPattern.FindStringSubmatch(blocks.Eq(i).Text()); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func workedFromRowText(row *goquery.Selection) (string, bool) {
	if m := workedPattern.FindStringSubmatch(row.Text()); m != nil {
		return m[1], true
	}
	return "", false
}

// Punches merges the progress-dot punches with the check-in/out cell punches
// of row, ordered by minute and de-duplicated on (minute, kind).
func Punches(row *goquery.Selection) []punch.Event {
	events := dotPunches(row)

	row.Find(".zpl_attentrydtls[aria-label]").Each(func(idx int, el *goquery.Selection) {
		label := el.AttrOr("aria-label", "")
		text := strings.TrimSpace(el.Find("b, strong").First().Text())
		if text == "" {
			text = label
		}
		tm, ok := clock.Normalize12h(text)
		if !ok {
			return
		}
		var kind punch.Kind
		switch {
		case checkInPattern.MatchString(label):
			kind = punch.In
		case checkOutPattern.MatchString(label):
			kind = punch.Out
		default:
			return
		}
		minute, ok := clock.MinuteOf12h(tm)
		if !ok {
			return
		}
		for _, e := range events {
			if e.Kind == kind && e.Minute == minute {
				return
			}
		}
		events = append(events, punch.Event{Time: tm, Minute: minute, Kind: kind, Order: cellOrderBase + idx})
	})

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Minute != events[j].Minute {
			return events[i].Minute < events[j].Minute
		}
		return events[i].Order < events[j].Order
	})

	type key struct {
		kind   punch.Kind
		minute int
	}
	seen := make(map[key]bool, len(events))
	uniq := make([]punch.Event, 0, len(events))
	for _, e := range events {
		k := key{e.Kind, e.Minute}
		if seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, e)
	}
	return uniq
}

// dotPunches reads the progress-bar markers. The hover hint carries the time;
// the class says whether the user was present (IN) or absent (OUT).
func dotPunches(row *goquery.Selection) []punch.Event {
	var events []punch.Event
	row.Find("span.zpl_attprgrsdot").Each(func(idx int, dot *goquery.Selection) {
		hint := dot.AttrOr("onmouseover", "")
		if hint == "" {
			hint = dot.AttrOr("aria-label", "")
		}
		tm, ok := clock.Normalize12h(hint)
		if !ok {
			return
		}
		class := dot.AttrOr("class", "")
		var kind punch.Kind
		switch {
		case strings.Contains(class, "zpl_prsntBg"):
			kind = punch.In
		case strings.Contains(class, "zpl_absntBg"):
			kind = punch.Out
		default:
			return
		}
		minute, ok := clock.MinuteOf12h(tm)
		if !ok {
			return
		}
		events = append(events, punch.Event{Time: tm, Minute: minute, Kind: kind, Order: idx})
	})
	return events
}

// PickBest chooses among per-frame results: a frame with a worked value wins,
// preferring one that is not a textual zero such as "00:00". Nil frames are
// skipped. It returns nil when every frame is nil.
func PickBest(frames []*Result) *Result {
	var hits, withWorked []*Result
	for _, f := range frames {
		if f == nil {
			continue
		}
		hits = append(hits, f)
		if f.WorkedText != "" && digitPattern.MatchString(f.WorkedText) {
			withWorked = append(withWorked, f)
		}
	}
	for _, f := range withWorked {
		if !zeroWorkedPattern.MatchString(f.WorkedText) {
			return f
		}
	}
	if len(withWorked) > 0 {
		return withWorked[0]
	}
	if len(hits) > 0 {
		return hits[0]
	}
	return nil
}
