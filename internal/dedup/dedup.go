// Package dedup implements a bounded, time-windowed fingerprint set used to
// debounce near-identical alert submissions (e.g., a double-tap on a client).
//
// A fingerprint combines the alert's raw timestamp token with its coordinates
// rounded to three decimal places, so only near-simultaneous alerts for the
// same location collide. This is deliberate debouncing, not general rate
// limiting; coarser per-IP limiting lives in the HTTP middleware layer.
//
// The set is process-local and never persisted. Stale entries are swept
// lazily inside CheckAndRecord rather than by a background timer, so in an
// idle process an entry can outlive the retention window until the next
// alert arrives.
package dedup

import (
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultWindow is the retention period for recorded fingerprints.
	DefaultWindow = 5 * time.Minute

	// DefaultMaxEntries bounds the in-memory set. When exceeded, the oldest
	// entry is evicted regardless of age.
	DefaultMaxEntries = 4096
)

// Deduplicator is a mutex-guarded fingerprint → insertion-time map.
// Insert and sweep happen inside one critical section so two concurrent
// requests carrying the same fingerprint can never both observe "new".
type Deduplicator struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration
	max     int
	clock   clock.Clock
}

// New constructs a Deduplicator. Non-positive window or maxEntries fall back
// to the package defaults; a nil clock falls back to the wall clock. Tests
// inject clock.NewMock() to simulate the passage of time.
func New(window time.Duration, maxEntries int, clk clock.Clock) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Deduplicator{
		entries: make(map[string]time.Time),
		window:  window,
		max:     maxEntries,
		clock:   clk,
	}
}

// Fingerprint derives the dedup key for an alert: the raw timestamp token
// concatenated with the latitude and longitude each rounded to three decimal
// places.
func Fingerprint(timestamp string, lat, lng float64) string {
	return timestamp + ":" +
		strconv.FormatFloat(lat, 'f', 3, 64) + ":" +
		strconv.FormatFloat(lng, 'f', 3, 64)
}

// CheckAndRecord reports whether fp was already recorded within the
// retention window. A hit does NOT refresh the original insertion time; a
// miss records fp at the current clock time.
//
// Entries older than the window are swept on every call, on both the
// duplicate and the non-duplicate path, before the membership check, so a
// stale entry never reads as a duplicate.
func (d *Deduplicator) CheckAndRecord(fp string) bool {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweepLocked(now)

	if _, ok := d.entries[fp]; ok {
		return true
	}
	d.entries[fp] = now
	if len(d.entries) > d.max {
		d.evictOldestLocked()
	}
	return false
}

// Len returns the current number of live entries.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// sweepLocked drops every entry older than now - window. Caller holds d.mu.
func (d *Deduplicator) sweepLocked(now time.Time) {
	cutoff := now.Add(-d.window)
	for fp, at := range d.entries {
		if at.Before(cutoff) {
			delete(d.entries, fp)
		}
	}
}

// evictOldestLocked removes the entry with the earliest insertion time.
// Caller holds d.mu.
func (d *Deduplicator) evictOldestLocked() {
	var (
		oldestFP string
		oldestAt time.Time
		found    bool
	)
	for fp, at := range d.entries {
		if !found || at.Before(oldestAt) {
			oldestFP, oldestAt, found = fp, at, true
		}
	}
	if found {
		delete(d.entries, oldestFP)
	}
}
