// Package store persists per-kind window size preferences between shell runs.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beenode/hivedesk/internal/wm"
)

// Sizes is a write-through size-preference store backed by a single JSON
// file. It satisfies wm.SizePreferences. A missing or unreadable file means
// no preferences; corrupt contents are discarded rather than surfaced, since
// a lost preference only costs one auto-layout.
type Sizes struct {
	path  string
	prefs map[wm.Kind]wm.Size
}

// DefaultPath returns the preference file under the user's config directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hivedesk", "sizes.json"), nil
}

// Open loads the store at path. It never fails: absent, unreadable, or
// corrupt files all yield an empty store.
func Open(path string) *Sizes {
	s := &Sizes{path: path, prefs: make(map[wm.Kind]wm.Size)}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var raw map[wm.Kind]wm.Size
	if err := json.Unmarshal(data, &raw); err != nil {
		return s
	}
	for id, size := range raw {
		if size.Width > 0 && size.Height > 0 {
			s.prefs[id] = size
		}
	}
	return s
}

// Get returns the stored preference for id, if any.
func (s *Sizes) Get(id wm.Kind) (wm.Size, bool) {
	size, ok := s.prefs[id]
	return size, ok
}

// Set records a preference and writes the file through. Persistence is best
// effort: a failed write loses a preference, not a session.
func (s *Sizes) Set(id wm.Kind, size wm.Size) {
	if size.IsZero() {
		return
	}
	s.prefs[id] = size
	_ = s.save()
}

// Forget drops the preference for id so the next open auto-sizes again.
func (s *Sizes) Forget(id wm.Kind) {
	if _, ok := s.prefs[id]; !ok {
		return
	}
	delete(s.prefs, id)
	_ = s.save()
}

// Path returns the backing file path.
func (s *Sizes) Path() string {
	return s.path
}

func (s *Sizes) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}
	data, err := json.MarshalIndent(s.prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
