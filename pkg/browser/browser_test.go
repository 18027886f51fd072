package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://people.zoho.com/acme/zp#attendance/entry/summary", true},
		{"https://people.zoho.eu/", true},
		{"https://people.zoho.in/x", true},
		{"https://people.zoho.com.au/hr", true},
		{"http://people.zoho.com/", false},
		{"https://people.zoho.com", false},
		{"https://mail.zoho.com/", false},
		{"https://evil.example/https://people.zoho.com/", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.url); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFilesReadFrames(t *testing.T) {
	dir := t.TempDir()
	top := filepath.Join(dir, "top.html")
	if err := os.WriteFile(top, []byte("<p>top</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := Files{URL: "https://people.zoho.com/", Paths: []string{top, filepath.Join(dir, "missing.html")}}
	snap, err := f.ReadFrames(context.Background())
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(snap.Frames) != 2 || snap.Frames[0] != "<p>top</p>" || snap.Frames[1] != "" {
		t.Errorf("Frames = %q", snap.Frames)
	}
	if snap.URL != f.URL {
		t.Errorf("URL = %q", snap.URL)
	}

	tabs, err := f.ReadTabs(context.Background())
	if err != nil || len(tabs) != 1 {
		t.Errorf("ReadTabs = %v, %v", tabs, err)
	}
}

func TestFilesErrors(t *testing.T) {
	if _, err := (Files{}).ReadFrames(context.Background()); err == nil {
		t.Error("no paths should be an error")
	}
	missing := Files{Paths: []string{filepath.Join(t.TempDir(), "nope.html")}}
	if _, err := missing.ReadFrames(context.Background()); err == nil {
		t.Error("all files missing should be an error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Files{Paths: []string{"x"}}).ReadFrames(ctx); err == nil {
		t.Error("cancelled context should be an error")
	}
}

func TestNewChromeDefaults(t *testing.T) {
	c := NewChrome("", nil)
	if c.url != DefaultDevToolsURL {
		t.Errorf("url = %q", c.url)
	}
}
