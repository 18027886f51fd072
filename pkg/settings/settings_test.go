package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hourz", "settings.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Load created a file for defaults")
	}
}

func TestLoadMissingKeys(t *testing.T) {
	s, err := Load(writeFile(t, "compact: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Settings{Target: DefaultTarget, OfficeStart: DefaultOfficeStart, Compact: true, AutoRefresh: true}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNormalizesMalformedTarget(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"off the grid", "target: \"07:15\"\n", DefaultTarget},
		{"out of range", "target: \"11:00\"\n", DefaultTarget},
		{"garbage", "target: banana\n", DefaultTarget},
		{"decimal hours", "target: 7.5\n", "07:30"},
		{"whole hours", "target: 9\n", "09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file)
			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if s.Target != tt.want {
				t.Errorf("Target = %q, want %q", s.Target, tt.want)
			}
			if !s.Normalized {
				t.Error("Normalized not reported")
			}

			// The corrected value is persisted.
			again, err := Load(path)
			if err != nil {
				t.Fatalf("second Load: %v", err)
			}
			if again.Target != tt.want || again.Normalized {
				t.Errorf("second Load = %+v, want persisted %q", again, tt.want)
			}
		})
	}
}

func TestLoadNormalizesOfficeStartAndTypes(t *testing.T) {
	path := writeFile(t, "target: \"07:30\"\noffice_start: noonish\ncompact: maybe\n")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Settings{Target: "07:30", OfficeStart: DefaultOfficeStart, AutoRefresh: true, Normalized: true}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeFile(t, "target: [unclosed\n")
	s, err := Load(path)
	if err == nil {
		t.Fatal("Load accepted invalid YAML")
	}
	if diff := cmp.Diff(Defaults(), s); diff != "" {
		t.Errorf("want defaults on error (-want +got):\n%s", diff)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "settings.yaml")
	in := Settings{Target: "09:30", OfficeStart: "08:15", Compact: true, AutoRefresh: false}

	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetChoices(t *testing.T) {
	want := []string{"06:00", "06:30", "07:00", "07:30", "08:00", "08:30", "09:00", "09:30", "10:00"}
	if diff := cmp.Diff(want, TargetChoices()); diff != "" {
		t.Errorf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestSetters(t *testing.T) {
	s := Defaults()
	if err := s.SetTarget("6:30"); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if s.Target != "06:30" || s.TargetSeconds() != 23400 || s.TargetDisplay() != "06:30:00" {
		t.Errorf("after SetTarget: %+v", s)
	}
	if err := s.SetTarget("06:45"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("SetTarget(06:45) error = %v", err)
	}
	if err := s.SetOfficeStart("7:05"); err != nil {
		t.Fatalf("SetOfficeStart: %v", err)
	}
	if s.OfficeStart != "07:05" || s.OfficeStartMinute() != 425 {
		t.Errorf("after SetOfficeStart: %+v", s)
	}
	if err := s.SetOfficeStart("25:00"); err == nil {
		t.Error("SetOfficeStart accepted 25:00")
	}
}

func TestDefaultPathEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	p, err := DefaultPath()
	if err != nil || p != "/tmp/custom.yaml" {
		t.Errorf("DefaultPath = %q, %v", p, err)
	}
}
