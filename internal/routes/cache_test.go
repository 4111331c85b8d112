package routes

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightboard/pkg/logger"
)

var now = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestCache() *Cache {
	return NewCache(Options{AdmissionWindow: time.Hour, ActualGrace: 30 * time.Minute}, logger.NewNop())
}

func at(d time.Duration) time.Time { return now.Add(d) }

func ptr(t time.Time) *time.Time { return &t }

func arrival(cs string, sched time.Time) Record {
	return Record{Callsign: cs, Origin: "PHX", Destination: "LAS", AirlineIATA: "WN", AirlineICAO: "SWA", ScheduledTime: sched}
}

func TestMergeAdmissionWindow(t *testing.T) {
	c := newTestCache()
	stats := c.Merge(map[string]Record{
		"SWA100": arrival("SWA100", at(20*time.Minute)),
		"SWA200": arrival("SWA200", at(61*time.Minute)),
		"SWA300": arrival("SWA300", at(-1*time.Minute)),
		"SWA400": arrival("SWA400", at(60*time.Minute)),
		"SWA500": arrival("SWA500", now),
	}, now)

	assert.Equal(t, 5, stats.Received)
	assert.Equal(t, 3, stats.Admitted)
	assert.Equal(t, 2, stats.Dropped)

	_, ok := c.Lookup("SWA100")
	assert.True(t, ok)
	_, ok = c.Lookup("SWA200")
	assert.False(t, ok, "records beyond the window are never admitted")
	_, ok = c.Lookup("SWA300")
	assert.False(t, ok)
	_, ok = c.Lookup("SWA400")
	assert.True(t, ok, "window upper bound is inclusive")
	_, ok = c.Lookup("SWA500")
	assert.True(t, ok, "window lower bound is inclusive")
}

func TestMergeAdmissionUsesEstimatedTime(t *testing.T) {
	c := newTestCache()

	late := arrival("AAL1", at(-10*time.Minute))
	late.ActualTime = ptr(at(15 * time.Minute))

	early := arrival("AAL2", at(30*time.Minute))
	early.ActualTime = ptr(at(90 * time.Minute))

	c.Merge(map[string]Record{"AAL1": late, "AAL2": early}, now)

	_, ok := c.Lookup("AAL1")
	assert.True(t, ok)
	_, ok = c.Lookup("AAL2")
	assert.False(t, ok)
}

func TestMergeDropsRecordsWithoutScheduledTime(t *testing.T) {
	c := newTestCache()
	stats := c.Merge(map[string]Record{"DAL9": {Origin: "ATL", Destination: "LAS"}}, now)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 0, c.Len())
}

func TestMergeReplacesExisting(t *testing.T) {
	c := newTestCache()
	c.Merge(map[string]Record{"SWA100": arrival("SWA100", at(20*time.Minute))}, now)

	replacement := arrival("SWA100", at(40*time.Minute))
	replacement.Origin = "DEN"
	c.Merge(map[string]Record{"swa100 ": replacement}, now)

	rec, ok := c.Lookup("SWA100")
	require.True(t, ok)
	assert.Equal(t, "DEN", rec.Origin)
	assert.Equal(t, at(40*time.Minute), rec.ScheduledTime)
	assert.Equal(t, 1, c.Len())
}

func TestEvictionOnEmptyMerge(t *testing.T) {
	c := newTestCache()
	c.Merge(map[string]Record{
		"SWA1": arrival("SWA1", at(5*time.Minute)),
		"SWA2": arrival("SWA2", at(50*time.Minute)),
	}, now)
	require.Equal(t, 2, c.Len())

	later := now.Add(10 * time.Minute)
	stats := c.Merge(nil, later)
	assert.Equal(t, 1, stats.Evicted)

	_, ok := c.Lookup("SWA1")
	assert.False(t, ok)
	_, ok = c.Lookup("SWA2")
	assert.True(t, ok)
}

func TestEvictionActualTimeGrace(t *testing.T) {
	c := newTestCache()

	// Seed through Restore so the actual times can already be in the past
	stale := arrival("UAL31", at(5*time.Minute))
	stale.ActualTime = ptr(at(-31 * time.Minute))
	fresh := arrival("UAL29", at(-10*time.Minute))
	fresh.ActualTime = ptr(at(-29 * time.Minute))

	c.Restore([]Record{stale, fresh}, now.Add(-time.Hour))
	require.Equal(t, 2, c.Len())

	c.Merge(nil, now)

	_, ok := c.Lookup("UAL31")
	assert.False(t, ok, "actual time 31 minutes ago is stale despite a future schedule")
	_, ok = c.Lookup("UAL29")
	assert.True(t, ok, "actual time 29 minutes ago is still within grace")
}

func TestLookupNormalizesKey(t *testing.T) {
	c := newTestCache()
	c.Merge(map[string]Record{" swa100": arrival("swa100", at(20*time.Minute))}, now)

	rec, ok := c.Lookup("  Swa100\t")
	require.True(t, ok)
	assert.Equal(t, "SWA100", rec.Callsign)

	_, ok = c.Lookup("SWA101")
	assert.False(t, ok)
}

func TestResolveFallback(t *testing.T) {
	c := newTestCache()

	rec, known := c.Resolve("jbu522")
	assert.False(t, known)
	assert.Equal(t, Unknown, rec.Origin)
	assert.Equal(t, Unknown, rec.Destination)
	assert.Equal(t, "JBU", rec.AirlineICAO)
	assert.Equal(t, "JBU", rec.AirlineIATA)
	assert.False(t, rec.Known())

	blank := Fallback("   ")
	assert.Equal(t, Unknown, blank.AirlineICAO)
	assert.Equal(t, "N1", Fallback("n1").AirlineIATA)
}

func TestRestoreKeepsNewerEntries(t *testing.T) {
	c := newTestCache()
	c.Merge(map[string]Record{"SWA100": arrival("SWA100", at(20*time.Minute))}, now)

	old := arrival("SWA100", at(25*time.Minute))
	old.Origin = "OAK"
	n := c.Restore([]Record{old, arrival("ASA7", at(-5*time.Minute)), {Callsign: "X"}}, now)
	assert.Equal(t, 1, n)

	rec, _ := c.Lookup("SWA100")
	assert.Equal(t, "PHX", rec.Origin)
}

func TestSnapshotSorted(t *testing.T) {
	c := newTestCache()
	c.Merge(map[string]Record{
		"UAL1": arrival("UAL1", at(10*time.Minute)),
		"AAL1": arrival("AAL1", at(10*time.Minute)),
		"DAL1": arrival("DAL1", at(10*time.Minute)),
	}, now)

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "AAL1", snap[0].Callsign)
	assert.Equal(t, "DAL1", snap[1].Callsign)
	assert.Equal(t, "UAL1", snap[2].Callsign)
}

// Lookups running alongside merges must only ever see whole records
func TestConcurrentMergeAndLookup(t *testing.T) {
	c := newTestCache()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for i := 0; i < 50; i++ {
					if rec, ok := c.Lookup(fmt.Sprintf("SWA%d", i)); ok {
						assert.Equal(t, rec.Origin, "O"+rec.Callsign)
						assert.Equal(t, "LAS", rec.Destination)
					}
				}
			}
		}()
	}

	var writers sync.WaitGroup
	for w := 0; w < 2; w++ {
		writers.Add(1)
		go func(w int) {
			defer writers.Done()
			for round := 0; round < 100; round++ {
				batch := make(map[string]Record)
				for i := w; i < 50; i += 2 {
					cs := fmt.Sprintf("SWA%d", i)
					rec := arrival(cs, at(time.Duration(round%50+1)*time.Minute))
					rec.Origin = "O" + cs
					batch[cs] = rec
				}
				c.Merge(batch, now)
			}
		}(w)
	}
	writers.Wait()
	close(stop)
	wg.Wait()

	assert.Equal(t, 50, c.Len(), "concurrent writers must not lose each other's records")
}
