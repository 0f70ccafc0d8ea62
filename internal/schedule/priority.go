package schedule

import (
	"math"
	"time"

	"tempo/internal/decay"
)

// priorityAt computes the 0-100 priority score for a task at the given
// instant:
//
//	round(clamp(urgency/100*Wu + importance/100*Wi + effort*We + deadline*Wd, 0, 1) * 100)
//
// math.Round rounds half away from zero, which the score contract requires.
func (c Config) priorityAt(t *Task, now time.Time) int {
	u := float64(clampInt(t.Urgency, 0, 100)) / 100
	i := float64(clampInt(t.Importance, 0, 100)) / 100
	score := u*c.UrgencyWeight +
		i*c.ImportanceWeight +
		effortScore(t.Estimate.Expected)*c.EffortWeight +
		deadlineScore(t, now)*c.DeadlineWeight
	return int(math.Round(decay.Clamp01(score) * 100))
}

// effortScore rewards quick wins: 1 - min(1, expected/1day), so shorter
// tasks score higher and anything a day or longer scores 0.
func effortScore(expected time.Duration) float64 {
	if expected <= 0 {
		return 1
	}
	return 1 - math.Min(1, float64(expected)/float64(24*time.Hour))
}

// deadlineScore is a step function of time remaining until the deadline.
// No deadline scores a neutral 0.5 — deliberately above the comfortable
// far-future tier of 0.3, since unknown urgency is not low urgency.
func deadlineScore(t *Task, now time.Time) float64 {
	if t.Deadline == nil {
		return 0.5
	}
	remaining := t.Deadline.Sub(now)
	switch {
	case remaining <= 0:
		return 1.0
	case remaining < t.Estimate.Expected:
		return 0.95
	case remaining < time.Hour:
		return 0.9
	case remaining < 4*time.Hour:
		return 0.8
	case remaining < 24*time.Hour:
		return 0.6
	default:
		return 0.3
	}
}
