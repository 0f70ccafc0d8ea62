package memory

import "time"

// Entry is one stored memory. DecayScore is a materialized view — it is
// recomputed from the entry's age at every read that depends on it and
// never trusted stale. RelevanceScore only exists on search results.
type Entry struct {
	ID                string    `json:"id"`
	Content           string    `json:"content"`
	Timestamp         time.Time `json:"timestamp"`
	DecayScore        float64   `json:"decayScore"`
	RelevanceScore    float64   `json:"relevanceScore,omitempty"`
	AccessCount       int       `json:"accessCount"`
	LastAccessedAt    time.Time `json:"lastAccessedAt"`
	AssociatedTaskIDs []string  `json:"associatedTaskIds,omitempty"`
}

// Config holds the memory index tunables. Zero values fall back to the
// documented defaults at construction.
type Config struct {
	// HalfLifeHours is the decay half-life (default one week).
	HalfLifeHours float64 `json:"half_life_hours"`
	// RecencyBoost multiplies relevance while decayScore is above 0.8.
	RecencyBoost float64 `json:"recency_boost"`
	// MaxAgeDays is the default prune cutoff.
	MaxAgeDays int `json:"max_age_days"`
	// DefaultLimit caps search results when the caller sets none.
	DefaultLimit int `json:"default_limit"`
	// MinRelevance filters search results when the caller sets none.
	MinRelevance float64 `json:"min_relevance"`
}

// DefaultConfig returns the documented memory defaults.
func DefaultConfig() Config {
	return Config{
		HalfLifeHours: 168,
		RecencyBoost:  1.2,
		MaxAgeDays:    90,
		DefaultLimit:  10,
		MinRelevance:  0.1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HalfLifeHours <= 0 {
		c.HalfLifeHours = d.HalfLifeHours
	}
	if c.RecencyBoost <= 0 {
		c.RecencyBoost = d.RecencyBoost
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = d.MaxAgeDays
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.MinRelevance <= 0 {
		c.MinRelevance = d.MinRelevance
	}
	return c
}

// SearchOpts controls a single search. Zero values take the configured
// defaults; MaxAgeDays zero means no age filter.
type SearchOpts struct {
	MaxAgeDays   int
	Limit        int
	MinRelevance float64
}

// PruneOpts controls a prune pass. MaxAgeDays zero takes the configured
// default; MinAccessCount is the inclusive access-count threshold below
// which stale entries are eligible for removal.
type PruneOpts struct {
	MaxAgeDays     int
	MinAccessCount int
}
