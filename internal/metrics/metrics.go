package metrics

import (
	"sync/atomic"
	"time"
)

const (
	// BucketCount is the number of latency histogram buckets.
	BucketCount   = 8
	cacheLineSize = 64
)

// BucketBounds are the inclusive upper bounds of the first BucketCount-1
// buckets; the last bucket is +Inf.
var BucketBounds = [BucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [BucketCount]uint64
}

// Snapshot is a point-in-time copy of every counter and histogram.
type Snapshot struct {
	Counters   []uint64
	Histograms map[int][]uint64
}

// Store holds a fixed number of counters, some of which may also carry a
// latency histogram.
type Store struct {
	enabled    bool
	latency    bool
	counters   []paddedCounter
	histograms []histogram
	timed      []bool
}

// New allocates a Store with size counter slots. timed lists the IDs that
// accept latency observations.
func New(size int, enabled, latency bool, timed ...int) *Store {
	s := &Store{
		enabled:    enabled,
		latency:    enabled && latency,
		counters:   make([]paddedCounter, size),
		histograms: make([]histogram, size),
		timed:      make([]bool, size),
	}
	for _, id := range timed {
		if id >= 0 && id < size {
			s.timed[id] = true
		}
	}
	return s
}

// Enabled reports whether writes are recorded.
func (s *Store) Enabled() bool { return s != nil && s.enabled }

// LatencyEnabled reports whether Observe records anything.
func (s *Store) LatencyEnabled() bool { return s != nil && s.latency }

// Inc adds one to counter id.
func (s *Store) Inc(id int) {
	if s == nil || !s.enabled || id < 0 || id >= len(s.counters) {
		return
	}
	atomic.AddUint64(&s.counters[id].value, 1)
}

// Observe records d in the histogram for id.
func (s *Store) Observe(id int, d time.Duration) {
	if s == nil || !s.latency || id < 0 || id >= len(s.histograms) || !s.timed[id] {
		return
	}
	atomic.AddUint64(&s.histograms[id].buckets[BucketIndex(d)], 1)
}

// Value returns the current value of counter id.
func (s *Store) Value(id int) uint64 {
	if s == nil || id < 0 || id >= len(s.counters) {
		return 0
	}
	return atomic.LoadUint64(&s.counters[id].value)
}

// Snapshot copies all counters and, when latency is enabled, all histograms.
func (s *Store) Snapshot() Snapshot {
	if s == nil || !s.enabled {
		return Snapshot{Histograms: map[int][]uint64{}}
	}

	snap := Snapshot{
		Counters:   make([]uint64, len(s.counters)),
		Histograms: make(map[int][]uint64),
	}
	for id := range s.counters {
		snap.Counters[id] = atomic.LoadUint64(&s.counters[id].value)
	}

	if s.latency {
		for id, timed := range s.timed {
			if !timed {
				continue
			}
			buckets := make([]uint64, BucketCount)
			for i := range buckets {
				buckets[i] = atomic.LoadUint64(&s.histograms[id].buckets[i])
			}
			snap.Histograms[id] = buckets
		}
	}

	return snap
}

// BucketIndex maps a latency to its histogram bucket.
func BucketIndex(d time.Duration) int {
	for i, bound := range BucketBounds {
		if d <= bound {
			return i
		}
	}
	return BucketCount - 1
}
