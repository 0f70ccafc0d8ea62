package schedule

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"tempo/internal/estimate"
)

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return New(DefaultConfig(), zap.NewNop())
}

func tenMinuteEstimate() estimate.DurationEstimate {
	return estimate.DurationEstimate{
		Minimum:    5 * time.Minute,
		Expected:   10 * time.Minute,
		Maximum:    15 * time.Minute,
		Confidence: 0.3,
		Category:   estimate.CategoryCoding,
		Complexity: estimate.ComplexityModerate,
	}
}

func mustAdd(t *testing.T, s *Scheduler, in Input) Task {
	t.Helper()
	task, err := s.AddTask(in)
	if err != nil {
		t.Fatalf("AddTask(%q): %v", in.Title, err)
	}
	return task
}

func TestAddTaskRequiresTitle(t *testing.T) {
	s := testScheduler(t)
	if _, err := s.AddTask(Input{Urgency: 50}); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestAddTaskClampsInputs(t *testing.T) {
	s := testScheduler(t)
	task := mustAdd(t, s, Input{Title: "t", Urgency: 150, Importance: -20, Estimate: tenMinuteEstimate()})

	if task.Urgency != 100 {
		t.Errorf("urgency = %d, want 100", task.Urgency)
	}
	if task.Importance != 0 {
		t.Errorf("importance = %d, want 0", task.Importance)
	}
	if task.Status != StatusPending {
		t.Errorf("status = %s, want pending", task.Status)
	}
}

func TestPriorityNoDeadline(t *testing.T) {
	s := testScheduler(t)
	task := mustAdd(t, s, Input{
		Title:      "ship it",
		Urgency:    90,
		Importance: 80,
		Estimate:   tenMinuteEstimate(),
	})

	// 0.9*0.4 + 0.8*0.3 + (1-600000/86400000)*0.2 + 0.5*0.1 = 0.848611...
	if task.Priority != 85 {
		t.Errorf("priority = %d, want 85", task.Priority)
	}
}

func TestPriorityBounds(t *testing.T) {
	s := testScheduler(t)
	past := time.Now().Add(-time.Hour)

	for _, in := range []Input{
		{Title: "max", Urgency: 100, Importance: 100, Deadline: &past, Estimate: estimate.DurationEstimate{Expected: time.Minute}},
		{Title: "min", Urgency: 0, Importance: 0, Estimate: estimate.DurationEstimate{Expected: 48 * time.Hour}},
	} {
		task := mustAdd(t, s, in)
		if task.Priority < 0 || task.Priority > 100 {
			t.Errorf("%s: priority %d out of [0,100]", in.Title, task.Priority)
		}
	}
}

func TestDeadlineScoreTiers(t *testing.T) {
	now := time.Now()
	est := tenMinuteEstimate()

	tests := []struct {
		name     string
		deadline *time.Time
		want     float64
	}{
		{"none", nil, 0.5},
		{"overdue", timePtr(now.Add(-time.Minute)), 1.0},
		{"tighter than estimate", timePtr(now.Add(5 * time.Minute)), 0.95},
		{"under an hour", timePtr(now.Add(30 * time.Minute)), 0.9},
		{"under four hours", timePtr(now.Add(2 * time.Hour)), 0.8},
		{"under a day", timePtr(now.Add(12 * time.Hour)), 0.6},
		{"comfortable", timePtr(now.Add(72 * time.Hour)), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Deadline: tt.deadline, Estimate: est}
			if got := deadlineScore(task, now); got != tt.want {
				t.Errorf("deadlineScore = %f, want %f", got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEffortScoreQuickWinBias(t *testing.T) {
	if short, long := effortScore(10*time.Minute), effortScore(8*time.Hour); short <= long {
		t.Errorf("shorter task should score higher: %f <= %f", short, long)
	}
	if got := effortScore(24 * time.Hour); got != 0 {
		t.Errorf("day-long effort = %f, want 0", got)
	}
	if got := effortScore(48 * time.Hour); got != 0 {
		t.Errorf("multi-day effort = %f, want 0", got)
	}
}

func TestRankingStableOnTies(t *testing.T) {
	s := testScheduler(t)
	// Identical inputs: identical priorities, so insertion order decides.
	first := mustAdd(t, s, Input{Title: "first", Urgency: 50, Importance: 50, Estimate: tenMinuteEstimate()})
	second := mustAdd(t, s, Input{Title: "second", Urgency: 50, Importance: 50, Estimate: tenMinuteEstimate()})

	list := s.TaskList()
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("tie broken against insertion order: got %s, %s", list[0].Title, list[1].Title)
	}

	next, ok := s.NextTask()
	if !ok || next.ID != first.ID {
		t.Errorf("NextTask = %v/%v, want earlier-inserted %s", next.Title, ok, first.Title)
	}
	_ = second
}

func TestTaskListSortedDescending(t *testing.T) {
	s := testScheduler(t)
	mustAdd(t, s, Input{Title: "low", Urgency: 10, Importance: 10, Estimate: tenMinuteEstimate()})
	mustAdd(t, s, Input{Title: "high", Urgency: 95, Importance: 90, Estimate: tenMinuteEstimate()})
	mustAdd(t, s, Input{Title: "mid", Urgency: 50, Importance: 50, Estimate: tenMinuteEstimate()})

	list := s.TaskList()
	for i := 1; i < len(list); i++ {
		if list[i].Priority > list[i-1].Priority {
			t.Errorf("list not descending at %d: %d > %d", i, list[i].Priority, list[i-1].Priority)
		}
	}
	if list[0].Title != "high" {
		t.Errorf("top task = %s, want high", list[0].Title)
	}
}

func TestNextTaskSkipsNonPending(t *testing.T) {
	s := testScheduler(t)
	top := mustAdd(t, s, Input{Title: "top", Urgency: 95, Importance: 95, Estimate: tenMinuteEstimate()})
	rest := mustAdd(t, s, Input{Title: "rest", Urgency: 20, Importance: 20, Estimate: tenMinuteEstimate()})

	if _, err := s.UpdateTaskStatus(top.ID, StatusInProgress); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	next, ok := s.NextTask()
	if !ok || next.ID != rest.ID {
		t.Errorf("NextTask = %v/%v, want %s", next.Title, ok, rest.Title)
	}
}

func TestNextTaskEmpty(t *testing.T) {
	s := testScheduler(t)
	if _, ok := s.NextTask(); ok {
		t.Error("expected absence on empty scheduler")
	}
}

func TestOverduePriorityRecomputedOnRead(t *testing.T) {
	s := testScheduler(t)
	soon := time.Now().Add(30 * time.Minute)
	task := mustAdd(t, s, Input{Title: "due soon", Urgency: 50, Importance: 50, Deadline: &soon, Estimate: tenMinuteEstimate()})
	before := task.Priority

	// Force the deadline into the past and re-read: the stored priority
	// must be refreshed against the clock, not trusted stale.
	past := time.Now().Add(-time.Minute)
	if _, err := s.UpdateTask(task.ID, Update{Deadline: &past}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	list := s.TaskList()
	if list[0].Priority <= before {
		t.Errorf("overdue priority %d should exceed pre-deadline %d", list[0].Priority, before)
	}
}

func TestUpdateTaskStatusLifecycle(t *testing.T) {
	s := testScheduler(t)
	task := mustAdd(t, s, Input{Title: "work", Urgency: 50, Importance: 50, Estimate: tenMinuteEstimate()})

	updated, err := s.UpdateTaskStatus(task.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Error("completion should stamp CompletedAt")
	}

	if _, err := s.UpdateTaskStatus(task.ID, Status("bogus")); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := s.UpdateTaskStatus("missing", StatusPending); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestOverdueTasks(t *testing.T) {
	s := testScheduler(t)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	late := mustAdd(t, s, Input{Title: "late", Urgency: 50, Importance: 50, Deadline: &past, Estimate: tenMinuteEstimate()})
	mustAdd(t, s, Input{Title: "fine", Urgency: 50, Importance: 50, Deadline: &future, Estimate: tenMinuteEstimate()})
	done := mustAdd(t, s, Input{Title: "done late", Urgency: 50, Importance: 50, Deadline: &past, Estimate: tenMinuteEstimate()})
	if _, err := s.UpdateTaskStatus(done.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	overdue := s.OverdueTasks()
	if len(overdue) != 1 || overdue[0].ID != late.ID {
		t.Errorf("overdue = %d tasks, want just %s", len(overdue), late.Title)
	}
}

func TestCleanupOldTasks(t *testing.T) {
	s := testScheduler(t)
	oldDone := mustAdd(t, s, Input{Title: "old done", Urgency: 10, Importance: 10, Estimate: tenMinuteEstimate()})
	oldPending := mustAdd(t, s, Input{Title: "old pending", Urgency: 10, Importance: 10, Estimate: tenMinuteEstimate()})
	freshDone := mustAdd(t, s, Input{Title: "fresh done", Urgency: 10, Importance: 10, Estimate: tenMinuteEstimate()})

	if _, err := s.UpdateTaskStatus(oldDone.ID, StatusCancelled); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateTaskStatus(freshDone.ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}

	// Backdate the first two past the cutoff.
	s.mu.Lock()
	stale := time.Now().AddDate(0, 0, -40)
	s.tasks[0].UpdatedAt = stale
	s.tasks[1].UpdatedAt = stale
	s.mu.Unlock()

	removed := s.CleanupOldTasks(30)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := s.GetTask(oldDone.ID); ok {
		t.Error("stale cancelled task should be removed")
	}
	if _, ok := s.GetTask(oldPending.ID); !ok {
		t.Error("pending task must survive cleanup regardless of age")
	}
	if _, ok := s.GetTask(freshDone.ID); !ok {
		t.Error("recently completed task should survive")
	}
}

func TestRemoveTask(t *testing.T) {
	s := testScheduler(t)
	task := mustAdd(t, s, Input{Title: "gone", Urgency: 50, Importance: 50, Estimate: tenMinuteEstimate()})

	if !s.RemoveTask(task.ID) {
		t.Error("RemoveTask should succeed")
	}
	if s.RemoveTask(task.ID) {
		t.Error("second remove should report absence")
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := testScheduler(t)
	mustAdd(t, s, Input{Title: "a", Urgency: 30, Importance: 30, Estimate: tenMinuteEstimate()})
	mustAdd(t, s, Input{Title: "b", Urgency: 60, Importance: 60, Estimate: tenMinuteEstimate()})

	restored := testScheduler(t)
	restored.Restore(s.Export())

	got := restored.Export()
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "b" {
		t.Errorf("round trip lost order: %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := Config{UrgencyWeight: 0.5, ImportanceWeight: 0.5, EffortWeight: 0.5, DeadlineWeight: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for weights not summing to 1")
	}
	neg := Config{UrgencyWeight: -0.1, ImportanceWeight: 0.6, EffortWeight: 0.3, DeadlineWeight: 0.2}
	if err := neg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}
