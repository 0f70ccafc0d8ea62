package schedule

import (
	"fmt"
	"math"
	"time"

	"tempo/internal/estimate"
)

// Status is a task's lifecycle state. Intended progression is
// pending -> in-progress -> completed, with deferred and cancelled as
// alternate terminal states; transitions are not otherwise enforced.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusDeferred   Status = "deferred"
	StatusCancelled  Status = "cancelled"
)

// ValidStatuses is the set of all recognized statuses.
var ValidStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusDeferred,
	StatusCancelled,
}

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends a task's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDeferred || s == StatusCancelled
}

// Task is one scheduled work item. Priority is a derived field — a pure
// function of urgency, importance, estimated effort, deadline, and the
// clock — recomputed before every ordered read and on every mutation.
// A persisted Priority is only as fresh as the last recomputation.
type Task struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description,omitempty"`
	Deadline    *time.Time                `json:"deadline,omitempty"`
	Estimate    estimate.DurationEstimate `json:"estimatedDuration"`
	Priority    int                       `json:"priority"`
	Urgency     int                       `json:"urgency"`
	Importance  int                       `json:"importance"`
	Status      Status                    `json:"status"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
	CompletedAt *time.Time                `json:"completedAt,omitempty"`
	Tags        []string                  `json:"tags,omitempty"`
}

// Input describes a task to add. The caller supplies a precomputed
// DurationEstimate; the scheduler never calls the estimator itself.
type Input struct {
	Title       string
	Description string
	Deadline    *time.Time
	Estimate    estimate.DurationEstimate
	Urgency     int
	Importance  int
	Tags        []string
}

// Update carries partial task mutations; nil fields are left alone.
type Update struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Urgency     *int
	Importance  *int
	Tags        []string
}

// Config holds the priority weights. They must sum to 1.
type Config struct {
	UrgencyWeight    float64 `json:"urgency_weight"`
	ImportanceWeight float64 `json:"importance_weight"`
	EffortWeight     float64 `json:"effort_weight"`
	DeadlineWeight   float64 `json:"deadline_weight"`
}

// DefaultConfig returns the documented default weights (0.4/0.3/0.2/0.1).
func DefaultConfig() Config {
	return Config{
		UrgencyWeight:    0.4,
		ImportanceWeight: 0.3,
		EffortWeight:     0.2,
		DeadlineWeight:   0.1,
	}
}

// Validate rejects negative weights and weight sets that do not sum to 1.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"urgency":    c.UrgencyWeight,
		"importance": c.ImportanceWeight,
		"effort":     c.EffortWeight,
		"deadline":   c.DeadlineWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scheduler: %s weight is negative: %f", name, w)
		}
	}
	sum := c.UrgencyWeight + c.ImportanceWeight + c.EffortWeight + c.DeadlineWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scheduler: weights must sum to 1.0, got %f", sum)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c == (Config{}) {
		return DefaultConfig()
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
