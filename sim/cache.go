package sim

import "github.com/sirupsen/logrus"

// CacheLine is one line of the fully-associative cache.
type CacheLine struct {
	Tag         int
	Valid       bool
	Dirty       bool
	Data        string // stored value, "" until a write fills it
	LastAccess  int64
	AccessCount int
}

// CacheSimulator models a small fully-associative cache over physical
// addresses with LRU line replacement and write-back accounting. It is a
// line-presence model: lines carry a tag and an optional value, not bytes.
type CacheSimulator struct {
	lines    []*CacheLine
	lineSpan int // addresses covered per line; tag = address / lineSpan
	clock    *Clock

	hits       int
	misses     int
	writeBacks int
}

// NewCacheSimulator creates a cache with numLines empty lines, each covering
// lineSpan consecutive addresses.
func NewCacheSimulator(numLines, lineSpan int, clock *Clock) *CacheSimulator {
	cs := &CacheSimulator{lineSpan: lineSpan, clock: clock}
	cs.lines = make([]*CacheLine, numLines)
	for i := range cs.lines {
		cs.lines[i] = &CacheLine{}
	}
	return cs
}

// Lines returns the line array for inspection.
// Callers must not mutate the returned lines.
func (cs *CacheSimulator) Lines() []*CacheLine {
	return cs.lines
}

// Access looks up address in the cache. A write stores data in the line and
// marks it dirty. A miss evicts the line with the oldest last-access; a dirty
// victim bumps the write-back counter (write-back is accounted, not
// performed). The returned data is the line's stored value after the access.
func (cs *CacheSimulator) Access(address int, data string, isWrite bool) (hit bool, out string) {
	tag := address / cs.lineSpan
	now := cs.clock.Tick()

	for _, line := range cs.lines {
		if line.Valid && line.Tag == tag {
			cs.hits++
			line.LastAccess = now
			line.AccessCount++
			if isWrite {
				line.Dirty = true
				line.Data = data
			}
			return true, line.Data
		}
	}

	cs.misses++
	victim := cs.oldestLine()
	if victim.Valid && victim.Dirty {
		cs.writeBacks++
		logrus.Debugf("cache: writing back dirty line tag=%d", victim.Tag)
	}
	victim.Tag = tag
	victim.Valid = true
	victim.Dirty = isWrite
	victim.LastAccess = now
	victim.AccessCount = 1
	if isWrite {
		victim.Data = data
	} else {
		victim.Data = ""
	}
	return false, victim.Data
}

// oldestLine returns the line with the globally oldest last-access; never-used
// lines have LastAccess zero and so are picked first.
func (cs *CacheSimulator) oldestLine() *CacheLine {
	victim := cs.lines[0]
	for _, line := range cs.lines[1:] {
		if line.LastAccess < victim.LastAccess {
			victim = line
		}
	}
	return victim
}

// Hits returns the cache-hit count.
func (cs *CacheSimulator) Hits() int { return cs.hits }

// Misses returns the cache-miss count.
func (cs *CacheSimulator) Misses() int { return cs.misses }

// WriteBacks returns the dirty-eviction count.
func (cs *CacheSimulator) WriteBacks() int { return cs.writeBacks }

// Stats returns a point-in-time summary of cache behavior.
func (cs *CacheSimulator) Stats() CacheStats {
	stats := CacheStats{Hits: cs.hits, Misses: cs.misses, WriteBacks: cs.writeBacks}
	if total := cs.hits + cs.misses; total > 0 {
		stats.HitRate = float64(cs.hits) / float64(total)
	}
	return stats
}

// Reset invalidates every line and zeroes the counters.
func (cs *CacheSimulator) Reset() {
	for i := range cs.lines {
		cs.lines[i] = &CacheLine{}
	}
	cs.hits = 0
	cs.misses = 0
	cs.writeBacks = 0
}
