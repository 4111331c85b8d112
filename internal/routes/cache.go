package routes

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yegors/flightboard/pkg/logger"
)

// Options controls admission and eviction windows
type Options struct {
	AdmissionWindow time.Duration // records must be relevant within [now, now+AdmissionWindow]
	ActualGrace     time.Duration // records with an actual time survive this long after it
}

// MergeStats summarizes one Merge call
type MergeStats struct {
	Received int `json:"received"`
	Admitted int `json:"admitted"`
	Dropped  int `json:"dropped"`
	Evicted  int `json:"evicted"`
	Size     int `json:"size"`
}

// Cache maps callsigns to route records. Readers load an immutable map
// through an atomic pointer; writers build a replacement map and swap it in.
type Cache struct {
	current atomic.Pointer[map[string]Record]
	writeMu sync.Mutex

	admissionWindow time.Duration
	actualGrace     time.Duration
	logger          *logger.Logger
}

// NewCache creates an empty route cache
func NewCache(opts Options, log *logger.Logger) *Cache {
	if opts.AdmissionWindow <= 0 {
		opts.AdmissionWindow = 60 * time.Minute
	}
	if opts.ActualGrace <= 0 {
		opts.ActualGrace = 30 * time.Minute
	}
	c := &Cache{
		admissionWindow: opts.AdmissionWindow,
		actualGrace:     opts.ActualGrace,
		logger:          log.Named("route-cache"),
	}
	empty := make(map[string]Record)
	c.current.Store(&empty)
	return c
}

// Merge admits incoming records, replacing any entry under the same
// callsign, evicts stale entries and publishes the result atomically.
func (c *Cache) Merge(records map[string]Record, now time.Time) MergeStats {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	old := *c.current.Load()
	next := make(map[string]Record, len(old)+len(records))
	for k, v := range old {
		next[k] = v
	}

	stats := MergeStats{Received: len(records)}
	horizon := now.Add(c.admissionWindow)
	for key, rec := range records {
		cs := NormalizeCallsign(key)
		if cs == "" || rec.ScheduledTime.IsZero() {
			stats.Dropped++
			continue
		}
		rel := rec.RelevanceTime()
		if rel.Before(now) || rel.After(horizon) {
			stats.Dropped++
			continue
		}
		rec.Callsign = cs
		next[cs] = rec
		stats.Admitted++
	}

	stats.Evicted = c.evict(next, now)
	stats.Size = len(next)
	c.current.Store(&next)

	c.logger.Debug("Route cache merged",
		logger.Int("received", stats.Received),
		logger.Int("admitted", stats.Admitted),
		logger.Int("dropped", stats.Dropped),
		logger.Int("evicted", stats.Evicted),
		logger.Int("size", stats.Size))

	return stats
}

// Restore seeds the cache with previously persisted records. Only the
// eviction rule applies; the admission window is not re-checked.
func (c *Cache) Restore(records []Record, now time.Time) int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	next := make(map[string]Record, len(records))
	for k, v := range *c.current.Load() {
		next[k] = v
	}
	for _, rec := range records {
		cs := NormalizeCallsign(rec.Callsign)
		if cs == "" || rec.ScheduledTime.IsZero() {
			continue
		}
		if _, exists := next[cs]; exists {
			continue
		}
		rec.Callsign = cs
		next[cs] = rec
	}
	c.evict(next, now)
	c.current.Store(&next)
	return len(next)
}

// evict removes stale records in place and returns how many were removed
func (c *Cache) evict(m map[string]Record, now time.Time) int {
	evicted := 0
	for cs, rec := range m {
		if c.stale(rec, now) {
			delete(m, cs)
			evicted++
		}
	}
	return evicted
}

// stale: a record with an actual time expires ActualGrace after it, one
// without expires once its scheduled time has passed.
func (c *Cache) stale(rec Record, now time.Time) bool {
	if rec.ActualTime != nil {
		return rec.ActualTime.Before(now.Add(-c.actualGrace))
	}
	return rec.ScheduledTime.Before(now)
}

// Lookup returns the record for a callsign. The bool is false when the
// callsign is not cached.
func (c *Cache) Lookup(callsign string) (Record, bool) {
	rec, ok := (*c.current.Load())[NormalizeCallsign(callsign)]
	return rec, ok
}

// Resolve returns the cached record or the Fallback for the callsign
func (c *Cache) Resolve(callsign string) (Record, bool) {
	if rec, ok := c.Lookup(callsign); ok {
		return rec, true
	}
	return Fallback(callsign), false
}

// Snapshot returns every cached record ordered by callsign
func (c *Cache) Snapshot() []Record {
	m := *c.current.Load()
	out := make([]Record, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Callsign < out[j].Callsign })
	return out
}

// Len returns the number of cached records
func (c *Cache) Len() int {
	return len(*c.current.Load())
}
