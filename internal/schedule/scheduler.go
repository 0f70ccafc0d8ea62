// Package schedule ranks pending work items. Each task carries urgency,
// importance, an effort estimate, and an optional deadline; the scheduler
// folds those into a single 0-100 priority against the current wall clock
// and keeps the collection ordered with stable, insertion-order tie-breaks.
package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler owns the task collection. Tasks are held in insertion order;
// ordered reads work on recomputed copies so ties always resolve to the
// earlier-inserted task.
type Scheduler struct {
	mu     sync.Mutex
	cfg    Config
	logger *zap.Logger
	tasks  []*Task
}

// New creates a Scheduler. An all-zero config takes the default weights.
func New(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cfg: cfg.withDefaults(), logger: logger}
}

// Restore loads persisted tasks, preserving their order.
func (s *Scheduler) Restore(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]*Task, len(tasks))
	for i := range tasks {
		t := tasks[i]
		s.tasks[i] = &t
	}
}

// Export returns copies of all tasks in insertion order.
func (s *Scheduler) Export() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Scheduler) copyLocked() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = *t
	}
	return out
}

// findLocked returns the task with the given id, or nil when absent.
// Callers must hold s.mu.
func (s *Scheduler) findLocked(id string) *Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddTask validates input, computes the initial priority, and appends the
// task. Title is the only hard requirement; urgency and importance are
// clamped to [0, 100].
func (s *Scheduler) AddTask(in Input) (Task, error) {
	if in.Title == "" {
		return Task{}, fmt.Errorf("schedule: title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := &Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Estimate:    in.Estimate,
		Urgency:     clampInt(in.Urgency, 0, 100),
		Importance:  clampInt(in.Importance, 0, 100),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        append([]string(nil), in.Tags...),
	}
	t.Priority = s.cfg.priorityAt(t, now)
	s.tasks = append(s.tasks, t)

	s.logger.Debug("task added",
		zap.String("id", t.ID),
		zap.String("title", t.Title),
		zap.Int("priority", t.Priority))
	return *t, nil
}

// UpdateTaskStatus sets a task's status. Completion stamps CompletedAt.
func (s *Scheduler) UpdateTaskStatus(id string, status Status) (Task, error) {
	if !status.IsValid() {
		return Task{}, fmt.Errorf("schedule: unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return Task{}, fmt.Errorf("schedule: task %s not found", id)
	}

	now := time.Now()
	t.Status = status
	t.UpdatedAt = now
	if status == StatusCompleted {
		completed := now
		t.CompletedAt = &completed
	}
	t.Priority = s.cfg.priorityAt(t, now)
	return *t, nil
}

// UpdateTask applies a partial mutation and recomputes priority.
func (s *Scheduler) UpdateTask(id string, up Update) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return Task{}, fmt.Errorf("schedule: task %s not found", id)
	}

	if up.Title != nil {
		if *up.Title == "" {
			return Task{}, fmt.Errorf("schedule: title cannot be empty")
		}
		t.Title = *up.Title
	}
	if up.Description != nil {
		t.Description = *up.Description
	}
	if up.Deadline != nil {
		t.Deadline = up.Deadline
	}
	if up.Urgency != nil {
		t.Urgency = clampInt(*up.Urgency, 0, 100)
	}
	if up.Importance != nil {
		t.Importance = clampInt(*up.Importance, 0, 100)
	}
	if up.Tags != nil {
		t.Tags = append([]string(nil), up.Tags...)
	}

	now := time.Now()
	t.UpdatedAt = now
	t.Priority = s.cfg.priorityAt(t, now)
	return *t, nil
}

// GetTask looks up a task by id.
func (s *Scheduler) GetTask(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findLocked(id); t != nil {
		return *t, true
	}
	return Task{}, false
}

// NextTask returns the highest-priority pending task, or false when none
// are pending. Priorities are recomputed against the current clock first,
// so scores drift as deadlines approach even with no external mutation.
func (s *Scheduler) NextTask() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ranked := s.rankLocked()
	for _, t := range ranked {
		if t.Status == StatusPending {
			return t, true
		}
	}
	return Task{}, false
}

// TaskList returns all tasks sorted descending by freshly recomputed
// priority. Equal-priority tasks keep insertion order.
func (s *Scheduler) TaskList() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rankLocked()
}

// rankLocked recomputes pending priorities at the current instant and
// returns a stable-sorted copy, descending by priority.
func (s *Scheduler) rankLocked() []Task {
	now := time.Now()
	for _, t := range s.tasks {
		if t.Status == StatusPending {
			t.Priority = s.cfg.priorityAt(t, now)
		}
	}
	out := s.copyLocked()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// OverdueTasks returns pending and in-progress tasks whose deadline has
// passed, in insertion order.
func (s *Scheduler) OverdueTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []Task
	for _, t := range s.tasks {
		if t.Status != StatusPending && t.Status != StatusInProgress {
			continue
		}
		if t.Deadline != nil && t.Deadline.Before(now) {
			out = append(out, *t)
		}
	}
	return out
}

// RemoveTask deletes a task by id.
func (s *Scheduler) RemoveTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// CleanupOldTasks removes terminal tasks whose UpdatedAt is older than
// maxAgeDays. Pending and in-progress tasks are kept regardless of age.
// Returns the number removed.
func (s *Scheduler) CleanupOldTasks(maxAgeDays int) int {
	if maxAgeDays <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept

	if removed > 0 {
		s.logger.Debug("old tasks cleaned up",
			zap.Int("removed", removed),
			zap.Int("max_age_days", maxAgeDays))
	}
	return removed
}
