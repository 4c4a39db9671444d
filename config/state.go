package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskdeck/log"

	"github.com/gofrs/flock"
)

const (
	StateFileName = "state.json"
	// DefaultLockTimeout is the default timeout for acquiring locks
	DefaultLockTimeout = 5 * time.Second
	// LockFileName is the name of the lock file
	LockFileName = "state.lock"
)

// UIState represents UI preferences that persist between sessions
type UIState struct {
	// HelpScreensSeen is a bitmask tracking which help screens have been shown
	HelpScreensSeen uint32 `json:"help_screens_seen"`
	// Route is the last visited route
	Route string `json:"route"`
	// SidebarHidden and DetailsHidden track toggled panels
	SidebarHidden bool `json:"sidebar_hidden"`
	DetailsHidden bool `json:"details_hidden"`
	// Label is the active issue list label filter
	Label string `json:"label"`
}

// State represents the application state that persists between sessions.
// Several processes may share one state file; reads and writes take a file lock.
type State struct {
	UI UIState `json:"ui"`

	dir         string
	lockFile    *flock.Flock
	lockTimeout time.Duration
}

// NewState returns empty state stored in dir
func NewState(dir string) *State {
	return &State{
		dir:         dir,
		lockFile:    flock.New(filepath.Join(dir, LockFileName)),
		lockTimeout: DefaultLockTimeout,
	}
}

// LoadState loads the state from dir. If it cannot be done, the empty state is returned.
func LoadState(dir string) *State {
	state := NewState(dir)
	if err := state.Refresh(); err != nil {
		log.WarningLog.Printf("failed to load state from disk: %v", err)
	}
	return state
}

// Refresh reloads state from disk under a shared lock
func (s *State) Refresh() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.lockFile.TryRLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire read lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire read lock within timeout")
	}
	defer s.lockFile.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, StateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	s.UI = loaded.UI
	return nil
}

// Save writes the state under an exclusive lock
func (s *State) Save() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.lockFile.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire write lock within timeout")
	}
	defer s.lockFile.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	statePath := filepath.Join(s.dir, StateFileName)
	tmpPath := statePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := os.Rename(tmpPath, statePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to atomically update state file: %w", err)
	}
	return nil
}

// SetUI replaces the UI state and saves it
func (s *State) SetUI(ui UIState) error {
	s.UI = ui
	return s.Save()
}
