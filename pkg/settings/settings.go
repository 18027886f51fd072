// Package settings loads and stores the user's persisted preferences.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/hourz/pkg/clock"
)

// Defaults for missing or malformed values.
const (
	DefaultTarget      = "08:00"
	DefaultOfficeStart = "09:00"
)

// EnvPath overrides the settings file location.
const EnvPath = "HOURZ_SETTINGS"

// ErrInvalidTarget is returned by SetTarget for a value outside TargetChoices.
var ErrInvalidTarget = errors.New("target must be between 06:00 and 10:00 in 30 minute steps")

// Settings is the persisted preference set.
type Settings struct {
	Target      string `yaml:"target"`       // daily target, one of TargetChoices
	OfficeStart string `yaml:"office_start"` // 24h HH:MM; worked time is not counted before it
	Compact     bool   `yaml:"compact"`
	AutoRefresh bool   `yaml:"auto_refresh"`

	// Normalized is set by Load when a stored value was replaced by its default.
	Normalized bool `yaml:"-"`
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		Target:      DefaultTarget,
		OfficeStart: DefaultOfficeStart,
		AutoRefresh: true,
	}
}

// TargetChoices lists the allowed targets: 06:00 through 10:00 in 30 minute steps.
func TargetChoices() []string {
	var out []string
	for m := 6 * 60; m <= 10*60; m += 30 {
		out = append(out, clock.FormatHHMM(m))
	}
	return out
}

// DefaultPath returns $HOURZ_SETTINGS, or settings.yaml under the user config dir.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "hourz", "settings.yaml"), nil
}

// Load reads settings from path. A missing file or key takes its default.
// Values outside the allowed set are replaced by their defaults and the
// corrected file is written back; Normalized reports that this happened.
// On a syntax error Load returns the defaults along with the error.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}

	var typeErr *yaml.TypeError
	if err := yaml.Unmarshal(data, &s); err != nil {
		if !errors.As(err, &typeErr) {
			return Defaults(), fmt.Errorf("parsing settings %s: %w", path, err)
		}
		s.Normalized = true
	}

	if target, ok := normalizeTarget(s.Target); ok {
		if target != s.Target {
			s.Normalized = true
		}
		s.Target = target
	} else {
		s.Target = DefaultTarget
		s.Normalized = true
	}

	if _, err := clock.ParseHHMM(s.OfficeStart); err != nil {
		s.OfficeStart = DefaultOfficeStart
		s.Normalized = true
	}

	if s.Normalized {
		if err := Save(path, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Save writes s to path atomically with owner-only permissions.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close() //nolint:errcheck // chmod error takes precedence
		return fmt.Errorf("setting settings file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing settings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

// TargetSeconds returns the daily target in seconds.
func (s Settings) TargetSeconds() int {
	target, ok := normalizeTarget(s.Target)
	if !ok {
		target = DefaultTarget
	}
	m, _ := clock.ParseHHMM(target) //nolint:errcheck // normalized above
	return m * 60
}

// TargetDisplay renders the target as HH:MM:SS.
func (s Settings) TargetDisplay() string {
	return clock.FormatHMS(s.TargetSeconds())
}

// OfficeStartMinute returns the office start as minutes since midnight.
func (s Settings) OfficeStartMinute() int {
	m, err := clock.ParseHHMM(s.OfficeStart)
	if err != nil {
		m, _ = clock.ParseHHMM(DefaultOfficeStart) //nolint:errcheck // constant
	}
	return m
}

// SetTarget validates and sets the daily target.
func (s *Settings) SetTarget(v string) error {
	target, ok := normalizeTarget(v)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, v)
	}
	s.Target = target
	return nil
}

// SetOfficeStart validates and sets the office start time.
func (s *Settings) SetOfficeStart(v string) error {
	m, err := clock.ParseHHMM(v)
	if err != nil {
		return err
	}
	s.OfficeStart = clock.FormatHHMM(m)
	return nil
}

// normalizeTarget maps v onto TargetChoices. Besides "HH:MM" it accepts the
// decimal hour form ("8", "7.5") older settings files stored.
func normalizeTarget(v string) (string, bool) {
	v = strings.TrimSpace(v)
	var minutes int
	if m, err := clock.ParseHHMM(v); err == nil {
		minutes = m
	} else if h, err := strconv.ParseFloat(v, 64); err == nil {
		minutes = int(h*60 + 0.5)
	} else {
		return "", false
	}
	target := clock.FormatHHMM(minutes)
	if !slices.Contains(TargetChoices(), target) {
		return "", false
	}
	return target, true
}
