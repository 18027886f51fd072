package badge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Setter shows a badge somewhere.
type Setter interface {
	Set(text, color string) error
}

// Status is the badge as last set.
type Status struct {
	UpdatedAt time.Time `json:"updated_at"`
	Text      string    `json:"text"`
	Color     string    `json:"color"`
}

// State holds the current badge in memory for the HTTP endpoint.
type State struct {
	now    func() time.Time
	status Status
	mu     sync.RWMutex
}

// NewState returns an empty badge.
func NewState() *State {
	return &State{now: time.Now, status: Status{Color: Color}}
}

// Set replaces the badge.
func (s *State) Set(text, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Text: text, Color: color, UpdatedAt: s.now()}
	return nil
}

// Get returns the badge.
func (s *State) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// StatusFile writes the badge text to a file for status bars that poll one
// (waybar, tmux, i3blocks). An empty badge writes an empty line.
type StatusFile struct {
	Path string
}

// Set writes text atomically.
func (f StatusFile) Set(text, _ string) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".badge-*")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.WriteString(text + "\n"); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace status file: %w", err)
	}
	return nil
}

// Setters fans a badge out to several places. Every setter is tried.
type Setters []Setter

// Set calls every setter and joins their errors.
func (ss Setters) Set(text, color string) error {
	var errs []error
	for _, s := range ss {
		if err := s.Set(text, color); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
