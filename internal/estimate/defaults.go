package estimate

import "time"

// baseDurations are the static fallback durations per category, used until
// a learned baseline earns enough confidence.
var baseDurations = map[Category]time.Duration{
	CategoryCoding:        600000 * time.Millisecond,
	CategoryDebugging:     900000 * time.Millisecond,
	CategoryTesting:       480000 * time.Millisecond,
	CategoryRefactoring:   720000 * time.Millisecond,
	CategoryResearch:      1200000 * time.Millisecond,
	CategoryWriting:       900000 * time.Millisecond,
	CategoryPlanning:      600000 * time.Millisecond,
	CategoryReview:        480000 * time.Millisecond,
	CategoryCommunication: 300000 * time.Millisecond,
}

// complexityMultipliers scale the category base.
var complexityMultipliers = map[Complexity]float64{
	ComplexityTrivial:  0.25,
	ComplexitySimple:   0.5,
	ComplexityModerate: 1.0,
	ComplexityComplex:  2.0,
	ComplexityEpic:     4.0,
}

// defaultBase returns the static base duration for a category. Unknown
// categories degrade to the coding base rather than erroring.
func defaultBase(c Category) time.Duration {
	if d, ok := baseDurations[c]; ok {
		return d
	}
	return baseDurations[CategoryCoding]
}

// multiplier returns the complexity multiplier, degrading to moderate.
func multiplier(c Complexity) float64 {
	if m, ok := complexityMultipliers[c]; ok {
		return m
	}
	return complexityMultipliers[ComplexityModerate]
}

// Config holds the estimator's tunables. Zero values fall back to the
// documented defaults at construction.
type Config struct {
	// MinSamples is how many completions of a pair it takes before
	// weighted historical accuracy replaces the sample-count ramp.
	MinSamples int `json:"min_samples"`
	// AccuracyDecayDays is the e-folding window for recency-weighting
	// historical accuracy.
	AccuracyDecayDays float64 `json:"accuracy_decay_days"`
	// LearningRate is the Bayesian blend rate applied per completion.
	LearningRate float64 `json:"learning_rate"`
	// MaxHistory bounds the completed-task history (FIFO eviction).
	MaxHistory int `json:"max_history"`
}

// DefaultConfig returns the documented estimator defaults.
func DefaultConfig() Config {
	return Config{
		MinSamples:        5,
		AccuracyDecayDays: 30,
		LearningRate:      0.3,
		MaxHistory:        1000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinSamples <= 0 {
		c.MinSamples = d.MinSamples
	}
	if c.AccuracyDecayDays <= 0 {
		c.AccuracyDecayDays = d.AccuracyDecayDays
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		c.LearningRate = d.LearningRate
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = d.MaxHistory
	}
	return c
}
