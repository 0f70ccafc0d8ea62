// Package state is the persistence collaborator: one JSON document holding
// every collection the estimator, scheduler, and memory index own, written
// as a whole-file overwrite and reloaded at startup. A missing or
// unreadable file never fails startup — it loads as a fresh empty tree.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tempo/internal/estimate"
	"tempo/internal/memory"
	"tempo/internal/schedule"
)

// BootMeta records process bookkeeping alongside the core collections.
type BootMeta struct {
	BootTime  time.Time `json:"bootTime"`
	Ticks     int64     `json:"ticks"`
	SessionID string    `json:"sessionId"`
}

// Document is the persisted record tree. Task history is newest-last and
// active tasks keep insertion order, so "most recent" survives a reload.
type Document struct {
	TaskHistory    []estimate.HistoryEntry `json:"taskHistory"`
	ActiveTasks    []estimate.ActiveTask   `json:"activeTasks"`
	ScheduledTasks []schedule.Task         `json:"scheduledTasks"`
	MemoryIndex    map[string]memory.Entry `json:"memoryIndex"`
	Boot           BootMeta                `json:"boot"`
}

// Empty returns a well-formed empty document.
func Empty() Document {
	return Document{
		MemoryIndex: make(map[string]memory.Entry),
	}
}

// Store reads and writes the state document at a fixed path.
type Store struct {
	path   string
	logger *zap.Logger
}

// DefaultPath returns ~/.tempo/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".tempo", "state.json"), nil
}

// NewStore creates a Store and ensures the parent directory exists.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. Absence is normal on first boot; a corrupt file
// is logged and replaced with an empty tree — never propagated upward.
func (s *Store) Load() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("state file unreadable, starting fresh",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return Empty()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("state file corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err))
		return Empty()
	}
	if doc.MemoryIndex == nil {
		doc.MemoryIndex = make(map[string]memory.Entry)
	}
	return doc
}

// Save writes the document atomically: marshal, write to a temp file in
// the same directory, rename over the target. Whole-file overwrite is the
// only write granularity.
func (s *Store) Save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
