package sim

// Clock is a monotonic logical clock shared by all subsystems of one Engine.
// Every recency-ordered event (page load, page access, cache touch) takes the
// next tick, so LRU/FIFO comparisons have a total order and never depend on
// wall time.
type Clock struct {
	now int64
}

// NewClock returns a clock starting at zero; the first Tick returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Tick advances the clock and returns the new time.
func (c *Clock) Tick() int64 {
	c.now++
	return c.now
}

// Now returns the current time without advancing.
func (c *Clock) Now() int64 {
	return c.now
}
