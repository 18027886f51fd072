package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/hourz/pkg/extract"
	"github.com/codeGROOVE-dev/hourz/pkg/punch"
)

func init() {
	color.NoColor = true
}

func TestCompute(t *testing.T) {
	const target = 8 * 3600

	tests := []struct {
		name   string
		worked int
		want   Summary
	}{
		{
			name:   "short of target",
			worked: 6*3600 + 30*60,
			want: Summary{
				WorkedSeconds:    23400,
				TargetSeconds:    target,
				RemainingSeconds: 5400,
				OvertimeSeconds:  0,
				Severity:         SeverityDanger,
				Badge:            "2h",
				ETA:              "4:30 PM",
			},
		},
		{
			name:   "overtime",
			worked: 9*3600 + 15*60,
			want: Summary{
				WorkedSeconds:    33300,
				TargetSeconds:    target,
				RemainingSeconds: 0,
				OvertimeSeconds:  4500,
				Severity:         SeverityOK,
				Badge:            "",
				ETA:              "3:00 PM",
			},
		},
		{
			name:   "nearly done",
			worked: target - 1800,
			want: Summary{
				WorkedSeconds:    target - 1800,
				TargetSeconds:    target,
				RemainingSeconds: 1800,
				Severity:         SeverityWarn,
				Badge:            "1h",
				ETA:              "3:30 PM",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.worked, target, 15*60)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		remaining int
		want      Severity
	}{
		{-10, SeverityOK},
		{0, SeverityOK},
		{1, SeverityWarn},
		{1800, SeverityWarn},
		{1801, SeverityDanger},
	}
	for _, tt := range tests {
		if got := Classify(tt.remaining); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}

func TestWeek(t *testing.T) {
	days := []extract.Day{
		{Label: "Today", WorkedText: "06:30"},
		{Label: "Fri 07-Mar", WorkedText: "09:15"},
		{Label: "Sat 08-Mar", WorkedText: "02:00"},
		{Label: " sun", WorkedText: ""},
		{Label: "Sunny day", WorkedText: "garbage"},
	}

	w := Week(days, 8*3600)

	want := []DayRow{
		{Label: "Today", WorkedText: "06:30", WorkedSeconds: 23400, TargetSeconds: 28800, NetSeconds: -5400, Net: "(−01:30:00)"},
		{Label: "Fri 07-Mar", WorkedText: "09:15", WorkedSeconds: 33300, TargetSeconds: 28800, NetSeconds: 4500, Net: "(+01:15:00)"},
		{Label: "Sat 08-Mar", WorkedText: "02:00", WorkedSeconds: 7200, TargetSeconds: 0, NetSeconds: 7200, Net: "(Leave)", Leave: true},
		{Label: " sun", WorkedText: "00:00", WorkedSeconds: 0, TargetSeconds: 0, NetSeconds: 0, Net: "(Leave)", Leave: true},
		{Label: "Sunny day", WorkedText: "garbage", WorkedSeconds: 0, TargetSeconds: 28800, NetSeconds: -28800, Net: "(−08:00:00)"},
	}
	if diff := cmp.Diff(want, w.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	if w.WorkedSeconds != 23400+33300+7200 {
		t.Errorf("WorkedSeconds = %d", w.WorkedSeconds)
	}
	if w.TargetSeconds != 3*28800 {
		t.Errorf("TargetSeconds = %d", w.TargetSeconds)
	}
	if w.NetSeconds != w.WorkedSeconds-w.TargetSeconds {
		t.Errorf("NetSeconds = %d", w.NetSeconds)
	}
	if got := w.Net(); got != "−06:15:00" {
		t.Errorf("Net() = %q", got)
	}
}

func TestWeekCapsAtSevenDays(t *testing.T) {
	days := make([]extract.Day, 10)
	for i := range days {
		days[i] = extract.Day{Label: "Mon", WorkedText: "1:00"}
	}
	if got := len(Week(days, 3600).Days); got != extract.MaxWeekDays {
		t.Errorf("len(Days) = %d, want %d", got, extract.MaxWeekDays)
	}
}

func sampleView() View {
	in1 := punch.Event{Time: "09:00 AM", Minute: 540, Kind: punch.In}
	out1 := punch.Event{Time: "12:00 PM", Minute: 720, Kind: punch.Out}
	in2 := punch.Event{Time: "01:00 PM", Minute: 780, Kind: punch.In}
	return View{
		URL:         "https://people.zoho.com/acme/zp#attendance",
		Target:      "08:00:00",
		WorkedText:  "06:30",
		WorkedBasis: "punches",
		Source:      extract.SourceTodayTable,
		Summary:     Compute(23400, 28800, 15*60),
		Pairs: []punch.Segment{
			{In: &in1, Out: &out1},
			{In: &in2, GapSeconds: 3600},
		},
		BreakTotalSeconds: 3600,
		Week:              Week([]extract.Day{{Label: "Today", WorkedText: "06:30"}, {Label: "Sat 08-Mar"}}, 28800),
	}
}

func TestRenderFull(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleView(), false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Target     08:00:00",
		"Worked     06:30:00 (punches)",
		"Remaining  01:30:00",
		"Done at    4:30 PM",
		"Breaks     01:00:00",
		"       — | IN 09:00 AM — OUT 12:00 PM",
		"01:00:00 | IN 01:00 PM — —",
		"(Leave)",
		"Net overtime −01:30:00",
		"Source: today-row:table",
		"https://people.zoho.com/acme/zp#attendance",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Overtime ") {
		t.Errorf("overtime row shown without overtime:\n%s", out)
	}
}

func TestRenderOvertime(t *testing.T) {
	v := sampleView()
	v.Summary = Compute(33300, 28800, 17*60)

	var buf bytes.Buffer
	if err := Render(&buf, v, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Overtime   +01:15:00") {
		t.Errorf("missing overtime row:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Remaining  00:00:00") {
		t.Errorf("remaining should be zero:\n%s", buf.String())
	}
}

func TestRenderError(t *testing.T) {
	v := View{Target: "08:00:00", Err: "Open the Zoho People attendance page (Summary view)."}

	var buf bytes.Buffer
	if err := Render(&buf, v, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, label := range []string{"Worked", "Remaining", "Done at", "Breaks", "Punches"} {
		if !strings.Contains(out, label+strings.Repeat(" ", 11-len(label))+Placeholder) {
			t.Errorf("%s should show the placeholder:\n%s", label, out)
		}
	}
	if !strings.Contains(out, v.Err) {
		t.Errorf("error message missing:\n%s", out)
	}
}

func TestRenderCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleView(), true); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "06:30:00 worked · 01:30:00 left · done 4:30 PM\n"
	if buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Render(&buf, View{Err: "boom"}, true); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "— worked · — left · boom\n" {
		t.Errorf("compact error = %q", buf.String())
	}
}

func TestRenderNoPunches(t *testing.T) {
	v := sampleView()
	v.Pairs = nil

	var buf bytes.Buffer
	if err := Render(&buf, v, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Breaks     —") || !strings.Contains(buf.String(), "Punches    —") {
		t.Errorf("empty punches should render placeholders:\n%s", buf.String())
	}
}

func TestBadgeLabel(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{0, ""},
		{-5, ""},
		{1, "1h"},
		{3600, "1h"},
		{3601, "2h"},
		{5400, "2h"},
		{8 * 3600, "8h"},
	}
	for _, tt := range tests {
		if got := BadgeLabel(tt.remaining); got != tt.want {
			t.Errorf("BadgeLabel(%d) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}

func TestWorkedFrom(t *testing.T) {
	withPunches := &extract.Result{
		WorkedText: "99:99",
		Punches: []punch.Event{
			{Time: "08:00 AM", Minute: 480, Kind: punch.In},
			{Time: "10:00 AM", Minute: 600, Kind: punch.Out},
		},
	}
	w, err := WorkedFrom(withPunches, 9*60, 12*60)
	if err != nil {
		t.Fatalf("WorkedFrom: %v", err)
	}
	if w.Basis != BasisPunches || w.Seconds != 3600 || len(w.Punches.Pairs) != 1 {
		t.Errorf("punch basis = %+v", w)
	}

	w, err = WorkedFrom(&extract.Result{WorkedText: "6:30"}, 9*60, 12*60)
	if err != nil {
		t.Fatalf("WorkedFrom: %v", err)
	}
	if w.Basis != BasisPageTotal || w.Seconds != 23400 {
		t.Errorf("page total basis = %+v", w)
	}

	if _, err := WorkedFrom(&extract.Result{WorkedText: "soon"}, 0, 0); err == nil {
		t.Error("unparseable page total accepted")
	}
}
