// Package memory is the temporal memory index: stored text entries scored
// at query time by exponential age decay and token-overlap relevance, with
// access-frequency reinforcement and pruning. Retrieval is deliberately
// not read-only — every returned entry gets an access boost, so memories
// that keep being found keep being findable.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tempo/internal/decay"
)

// Index owns the keyed entry collection.
type Index struct {
	mu      sync.Mutex
	cfg     Config
	logger  *zap.Logger
	entries map[string]*Entry
}

// New creates an Index. An all-zero config takes the defaults.
func New(cfg Config, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		cfg:     cfg.withDefaults(),
		logger:  logger,
		entries: make(map[string]*Entry),
	}
}

// Restore loads persisted entries.
func (m *Index) Restore(entries map[string]Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry, len(entries))
	for id, e := range entries {
		entry := e
		m.entries[id] = &entry
	}
}

// Export returns a copy of the entry map.
func (m *Index) Export() map[string]Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Entry, len(m.entries))
	for id, e := range m.entries {
		out[id] = *e
	}
	return out
}

// Len reports the number of stored entries.
func (m *Index) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// AddEntry stores new content. The id is a hash of content and creation
// time, so re-adding collides only on an exact repeat within the same
// millisecond — in which case the existing entry is returned unchanged.
func (m *Index) AddEntry(content string, taskIDs ...string) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	id := entryID(content, now)
	if existing, ok := m.entries[id]; ok {
		return *existing
	}

	entry := &Entry{
		ID:                id,
		Content:           content,
		Timestamp:         now,
		DecayScore:        1.0,
		LastAccessedAt:    now,
		AssociatedTaskIDs: append([]string(nil), taskIDs...),
	}
	m.entries[id] = entry

	m.logger.Debug("memory added",
		zap.String("id", id),
		zap.Int("content_len", len(content)),
		zap.Int("tasks", len(taskIDs)))
	return *entry
}

// Search ranks entries against the query. Decay scores are recomputed for
// every candidate — the stored value is stale the moment it is written —
// and every returned entry's access bookkeeping is updated.
func (m *Index) Search(query string, opts SearchOpts) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = m.cfg.DefaultLimit
	}
	minRelevance := opts.MinRelevance
	if minRelevance <= 0 {
		minRelevance = m.cfg.MinRelevance
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	now := time.Now()
	halfLife := m.halfLife()

	var results []*Entry
	for _, e := range m.entries {
		age := now.Sub(e.Timestamp)
		if opts.MaxAgeDays > 0 && age > time.Duration(opts.MaxAgeDays)*24*time.Hour {
			continue
		}

		e.DecayScore = decay.Exponential(age, halfLife)

		frac := matchFraction(terms, tokenize(e.Content))
		if frac == 0 {
			continue
		}

		recencyBoost := 1.0
		if e.DecayScore > 0.8 {
			recencyBoost = m.cfg.RecencyBoost
		}
		accessBoost := 1 + minFloat(0.2, float64(e.AccessCount)*0.02)

		relevance := frac * recencyBoost * e.DecayScore * accessBoost
		if relevance < minRelevance {
			continue
		}
		e.RelevanceScore = relevance
		results = append(results, e)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	// Retrieval reinforcement: returned entries become easier to find.
	out := make([]Entry, len(results))
	for i, e := range results {
		e.AccessCount++
		e.LastAccessedAt = now
		out[i] = *e
	}
	return out
}

// GetEntry looks up one entry by id, with the same access bookkeeping and
// decay refresh as search.
func (m *Index) GetEntry(id string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Entry{}, false
	}
	now := time.Now()
	e.DecayScore = decay.Exponential(now.Sub(e.Timestamp), m.halfLife())
	e.AccessCount++
	e.LastAccessedAt = now
	return *e, true
}

// UpdateEntry replaces an entry's content in place. The id is stable
// across updates.
func (m *Index) UpdateEntry(id, content string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Entry{}, false
	}
	e.Content = content
	return *e, true
}

// AssociateTask cross-links an entry to a scheduled task id for later
// lookup. Duplicate links are ignored.
func (m *Index) AssociateTask(entryID, taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok {
		return false
	}
	for _, id := range e.AssociatedTaskIDs {
		if id == taskID {
			return true
		}
	}
	e.AssociatedTaskIDs = append(e.AssociatedTaskIDs, taskID)
	return true
}

// EntriesForTask returns every entry associated with the given task id,
// newest first.
func (m *Index) EntriesForTask(taskID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, e := range m.entries {
		for _, id := range e.AssociatedTaskIDs {
			if id == taskID {
				out = append(out, *e)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// RemoveEntry deletes an entry by id.
func (m *Index) RemoveEntry(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	return true
}

// Prune removes entries that are both stale and rarely accessed. Two
// independent staleness criteria, either sufficient: older than the age
// cutoff, or decayed below 0.1. In both cases the entry's access count
// must be at or below the threshold to be removed. Returns the number
// removed.
func (m *Index) Prune(opts PruneOpts) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxAgeDays := opts.MaxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = m.cfg.MaxAgeDays
	}
	cutoff := time.Duration(maxAgeDays) * 24 * time.Hour

	now := time.Now()
	halfLife := m.halfLife()
	removed := 0
	for id, e := range m.entries {
		if e.AccessCount > opts.MinAccessCount {
			continue
		}
		age := now.Sub(e.Timestamp)
		e.DecayScore = decay.Exponential(age, halfLife)
		if age > cutoff || e.DecayScore < 0.1 {
			delete(m.entries, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Debug("memory pruned",
			zap.Int("removed", removed),
			zap.Int("max_age_days", maxAgeDays),
			zap.Int("min_access_count", opts.MinAccessCount))
	}
	return removed
}

func (m *Index) halfLife() time.Duration {
	return time.Duration(m.cfg.HalfLifeHours * float64(time.Hour))
}

// entryID derives a deterministic id from content and creation time, so
// idempotent re-adds collide only on exact repeats.
func entryID(content string, ts time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", content, ts.UnixMilli()))
	return "mem_" + hex.EncodeToString(sum[:8])
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
