// Package estimate learns how long things take. It keeps a bounded history
// of completed tracked tasks, maintains per-(category, complexity) learned
// baselines via Bayesian blending, and produces bounded duration estimates
// with confidence scores.
package estimate

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tempo/internal/decay"
)

// Estimator owns the task history, the active-task list, and the learned
// baseline projection. Estimate never mutates state; StartTask and
// CompleteTask do.
type Estimator struct {
	mu        sync.Mutex
	cfg       Config
	logger    *zap.Logger
	sessionID string

	history   []HistoryEntry
	active    []ActiveTask
	baselines map[baselineKey]baseline
}

// New creates an Estimator with a fresh session id.
func New(cfg Config, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		cfg:       cfg.withDefaults(),
		logger:    logger,
		sessionID: uuid.New().String(),
		baselines: make(map[baselineKey]baseline),
	}
}

// SessionID returns the id stamped onto history entries completed in this
// process lifetime.
func (e *Estimator) SessionID() string {
	return e.sessionID
}

// Restore loads persisted history and active tasks, then rebuilds the
// baseline projection by replaying history in chronological order.
// Baselines are never persisted; they are always reconstructible.
func (e *Estimator) Restore(history []HistoryEntry, active []ActiveTask) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append([]HistoryEntry(nil), history...)
	sort.SliceStable(e.history, func(i, j int) bool {
		return e.history[i].Timestamp.Before(e.history[j].Timestamp)
	})
	if len(e.history) > e.cfg.MaxHistory {
		e.history = e.history[len(e.history)-e.cfg.MaxHistory:]
	}

	e.baselines = make(map[baselineKey]baseline)
	for _, h := range e.history {
		e.updateBaselineLocked(h.Category, h.Complexity, h.ActualDuration)
	}

	e.active = append([]ActiveTask(nil), active...)
	e.logger.Debug("estimator restored",
		zap.Int("history", len(e.history)),
		zap.Int("active", len(e.active)),
		zap.Int("baselines", len(e.baselines)))
}

// Export returns copies of the persisted collections.
func (e *Estimator) Export() (history []HistoryEntry, active []ActiveTask) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]HistoryEntry(nil), e.history...), append([]ActiveTask(nil), e.active...)
}

// Estimate produces a duration estimate for the given pair. It reads
// history and baselines but mutates nothing, so repeated calls with no
// intervening completion agree. It never fails: with no matching history
// it degrades to the static defaults at confidence 0.3.
func (e *Estimator) Estimate(category Category, complexity Complexity) DurationEstimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimateLocked(category, complexity)
}

func (e *Estimator) estimateLocked(category Category, complexity Complexity) DurationEstimate {
	matching := e.matchingLocked(category, complexity)

	base := defaultBase(category)
	base = time.Duration(float64(base) * multiplier(complexity))
	if b, ok := e.baselines[baselineKey{category, complexity}]; ok && b.Confidence > 0.5 {
		base = b.Mean
	}

	// High-uncertainty sentinel until two samples exist.
	variance := 0.5
	if len(matching) >= 2 {
		actuals := make([]float64, len(matching))
		for i, h := range matching {
			actuals[i] = float64(h.ActualDuration)
		}
		variance = decay.CoefficientOfVariation(actuals)
	}

	return DurationEstimate{
		Minimum:     time.Duration(float64(base) / (1 + variance)),
		Expected:    base,
		Maximum:     time.Duration(float64(base) * (1 + variance)),
		Confidence:  e.confidenceLocked(matching),
		SampleCount: len(matching),
		Category:    category,
		Complexity:  complexity,
	}
}

// confidenceLocked combines three signals: a sample-count ramp from 0.3 to
// 0.5 below MinSamples, recency-weighted historical accuracy at or above
// it, and a small sample bonus. Capped at decay.ConfidenceCap.
func (e *Estimator) confidenceLocked(matching []HistoryEntry) float64 {
	n := len(matching)
	if n == 0 {
		return 0.3
	}

	var base float64
	if n < e.cfg.MinSamples {
		base = 0.3 + 0.2*float64(n)/float64(e.cfg.MinSamples)
	} else {
		base = e.weightedAccuracyLocked(matching)
	}

	bonus := math.Min(0.2, float64(n)*0.02)
	return math.Min(decay.ConfidenceCap, base+bonus)
}

// weightedAccuracyLocked averages historical accuracy with weights that
// fall off exponentially with age.
func (e *Estimator) weightedAccuracyLocked(matching []HistoryEntry) float64 {
	window := time.Duration(e.cfg.AccuracyDecayDays * 24 * float64(time.Hour))
	now := time.Now()

	var sum, weights float64
	for _, h := range matching {
		w := decay.RecencyWeight(now.Sub(h.Timestamp), window)
		sum += h.Accuracy * w
		weights += w
	}
	if weights == 0 {
		return 0.5
	}
	return decay.Clamp01(sum / weights)
}

func (e *Estimator) matchingLocked(category Category, complexity Complexity) []HistoryEntry {
	var out []HistoryEntry
	for _, h := range e.history {
		if h.Category == category && h.Complexity == complexity {
			out = append(out, h)
		}
	}
	return out
}

// StartTask begins timing a new task and returns it. Task ids are
// timestamp-seeded with a random suffix so concurrent starts never collide.
func (e *Estimator) StartTask(category Category, complexity Complexity) ActiveTask {
	e.mu.Lock()
	defer e.mu.Unlock()

	est := e.estimateLocked(category, complexity)
	task := ActiveTask{
		ID:                newTaskID(),
		Category:          category,
		Complexity:        complexity,
		StartTime:         time.Now(),
		EstimatedDuration: est.Expected,
	}
	e.active = append(e.active, task)
	e.logger.Debug("task started",
		zap.String("id", task.ID),
		zap.String("category", string(category)),
		zap.String("complexity", string(complexity)),
		zap.Duration("estimated", task.EstimatedDuration))
	return task
}

// CompleteTask finishes an active task: computes elapsed wall time and
// accuracy, appends a history entry (evicting the oldest past MaxHistory),
// and folds the observation into the pair's baseline. An empty id resolves
// to the most recently started task. Returns false when nothing is active —
// an absence, not an error.
func (e *Estimator) CompleteTask(taskID string) (HistoryEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	if taskID == "" {
		idx = len(e.active) - 1
	} else {
		for i, t := range e.active {
			if t.ID == taskID {
				idx = i
				break
			}
		}
	}
	if idx < 0 || idx >= len(e.active) {
		e.logger.Debug("no active task to complete", zap.String("id", taskID))
		return HistoryEntry{}, false
	}

	task := e.active[idx]
	e.active = append(e.active[:idx], e.active[idx+1:]...)

	now := time.Now()
	actual := now.Sub(task.StartTime)
	entry := HistoryEntry{
		ID:                task.ID,
		Category:          task.Category,
		Complexity:        task.Complexity,
		EstimatedDuration: task.EstimatedDuration,
		ActualDuration:    actual,
		Accuracy:          Accuracy(task.EstimatedDuration, actual),
		Timestamp:         now,
		SessionID:         e.sessionID,
	}

	e.history = append(e.history, entry)
	if len(e.history) > e.cfg.MaxHistory {
		e.history = e.history[len(e.history)-e.cfg.MaxHistory:]
	}
	e.updateBaselineLocked(task.Category, task.Complexity, actual)

	e.logger.Debug("task completed",
		zap.String("id", task.ID),
		zap.Duration("estimated", task.EstimatedDuration),
		zap.Duration("actual", actual),
		zap.Float64("accuracy", entry.Accuracy))
	return entry, true
}

// updateBaselineLocked blends an observed duration into the pair's
// baseline. A fresh pair starts from the static default at low confidence
// so replaying history from an empty store is deterministic.
func (e *Estimator) updateBaselineLocked(category Category, complexity Complexity, observed time.Duration) {
	key := baselineKey{category, complexity}
	b, ok := e.baselines[key]
	if !ok {
		b = baseline{
			Mean:       time.Duration(float64(defaultBase(category)) * multiplier(complexity)),
			Confidence: 0.1,
		}
	}
	mean, conf := decay.BayesianBlend(float64(b.Mean), b.Confidence, float64(observed), e.cfg.LearningRate)
	e.baselines[key] = baseline{Mean: time.Duration(mean), Confidence: conf}
}

// HistoryLen reports the current history size.
func (e *Estimator) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// ActiveTasks returns a copy of the insertion-ordered active task list.
func (e *Estimator) ActiveTasks() []ActiveTask {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ActiveTask(nil), e.active...)
}

// Accuracy scores how close an estimate came to the actual duration,
// in [0, 1]. Exact matches score 1. Overestimating decays the score at
// half the rate of underestimating: an underestimate scores the raw
// estimated/actual ratio, an overestimate scores max(0, 1-(ratio-1)*0.5).
// A zero actual duration scores 0.
func Accuracy(estimated, actual time.Duration) float64 {
	if actual <= 0 || estimated <= 0 {
		return 0
	}
	ratio := float64(estimated) / float64(actual)
	if ratio <= 1 {
		return ratio
	}
	return math.Max(0, 1-(ratio-1)*0.5)
}

func newTaskID() string {
	return fmt.Sprintf("task_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
