package estimate

import "time"

// Category classifies the kind of work being timed.
type Category string

const (
	CategoryCoding        Category = "coding"
	CategoryDebugging     Category = "debugging"
	CategoryTesting       Category = "testing"
	CategoryRefactoring   Category = "refactoring"
	CategoryResearch      Category = "research"
	CategoryWriting       Category = "writing"
	CategoryPlanning      Category = "planning"
	CategoryReview        Category = "review"
	CategoryCommunication Category = "communication"
)

// ValidCategories is the set of all recognized categories.
var ValidCategories = []Category{
	CategoryCoding,
	CategoryDebugging,
	CategoryTesting,
	CategoryRefactoring,
	CategoryResearch,
	CategoryWriting,
	CategoryPlanning,
	CategoryReview,
	CategoryCommunication,
}

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Complexity grades how involved a piece of work is.
type Complexity string

const (
	ComplexityTrivial  Complexity = "trivial"
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityEpic     Complexity = "epic"
)

// ValidComplexities is the set of all recognized complexities.
var ValidComplexities = []Complexity{
	ComplexityTrivial,
	ComplexitySimple,
	ComplexityModerate,
	ComplexityComplex,
	ComplexityEpic,
}

// IsValid returns true if the complexity is recognized.
func (c Complexity) IsValid() bool {
	for _, v := range ValidComplexities {
		if c == v {
			return true
		}
	}
	return false
}

// DurationEstimate is the estimator's answer for one (category, complexity)
// pair. Minimum <= Expected <= Maximum always holds, and Confidence stays
// within [0, 0.95].
type DurationEstimate struct {
	Minimum     time.Duration `json:"minimum"`
	Expected    time.Duration `json:"expected"`
	Maximum     time.Duration `json:"maximum"`
	Confidence  float64       `json:"confidence"`
	SampleCount int           `json:"sampleCount"`
	Category    Category      `json:"category"`
	Complexity  Complexity    `json:"complexity"`
}

// HistoryEntry is the immutable record of one completed tracked task.
type HistoryEntry struct {
	ID                string        `json:"id"`
	Category          Category      `json:"category"`
	Complexity        Complexity    `json:"complexity"`
	EstimatedDuration time.Duration `json:"estimatedDuration"`
	ActualDuration    time.Duration `json:"actualDuration"`
	Accuracy          float64       `json:"accuracy"`
	Timestamp         time.Time     `json:"timestamp"`
	SessionID         string        `json:"sessionId"`
}

// ActiveTask is a task currently being timed. Active tasks live in an
// insertion-ordered list so "most recently started" is explicit.
type ActiveTask struct {
	ID                string        `json:"id"`
	Category          Category      `json:"category"`
	Complexity        Complexity    `json:"complexity"`
	StartTime         time.Time     `json:"startTime"`
	EstimatedDuration time.Duration `json:"estimatedDuration"`
}

// baseline is the learned mean duration for one (category, complexity)
// pair. It is a projection of history — rebuilt by replay on restore,
// never persisted on its own.
type baseline struct {
	Mean       time.Duration
	Confidence float64
}

type baselineKey struct {
	Category   Category
	Complexity Complexity
}
