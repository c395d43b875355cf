package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Config groups the engine's construction parameters. Zero-valued fields
// fall back to the listed defaults.
type Config struct {
	MemorySize int               // linear space capacity (default 100)
	PageSize   int               // paging page size (default 10)
	MaxFrames  int               // physical frame count (default 10)
	CacheLines int               // cache line count (default 4)
	LineSpan   int               // addresses per cache line (default 16)
	VMPageSize int               // virtual-memory page size (default 256)
	VMFrames   int               // virtual-memory frame count (default 8)
	Strategy   Strategy          // initial placement strategy (default FirstFit)
	Policy     ReplacementPolicy // initial replacement policy (default FIFO)
}

func (c Config) withDefaults() Config {
	if c.MemorySize <= 0 {
		c.MemorySize = 100
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.MaxFrames <= 0 {
		c.MaxFrames = 10
	}
	if c.CacheLines <= 0 {
		c.CacheLines = 4
	}
	if c.LineSpan <= 0 {
		c.LineSpan = 16
	}
	if c.VMPageSize <= 0 {
		c.VMPageSize = 256
	}
	if c.VMFrames <= 0 {
		c.VMFrames = 8
	}
	return c
}

// Engine is the facade a driver (CLI/GUI event loop) talks to, one
// synchronous command at a time. It owns every subsystem exclusively and
// hands out process IDs ("P1", "P2", ...).
type Engine struct {
	config   Config
	strategy Strategy
	clock    *Clock

	region   *RegionAllocator
	buddy    *BuddyAllocator
	paging   *PagingSystem
	segments *SegmentTable
	cache    *CacheSimulator
	vm       *VirtualMemoryTranslator

	processSeq int
	allocStats map[Strategy]*AllocStats
}

// NewEngine creates an engine with all subsystems empty.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	clock := NewClock()
	paging := NewPagingSystem(cfg.PageSize, cfg.MaxFrames, cfg.Policy, clock)
	e := &Engine{
		config:   cfg,
		strategy: cfg.Strategy,
		clock:    clock,
		region:   NewRegionAllocator(cfg.MemorySize),
		buddy:    NewBuddyAllocator(cfg.MemorySize),
		paging:   paging,
		segments: NewSegmentTable(paging),
		cache:    NewCacheSimulator(cfg.CacheLines, cfg.LineSpan, clock),
		vm:       NewVirtualMemoryTranslator(cfg.VMPageSize, cfg.VMFrames),
	}
	e.resetStats()
	e.processSeq = 1
	return e
}

func (e *Engine) resetStats() {
	e.allocStats = make(map[Strategy]*AllocStats)
	for _, s := range Strategies() {
		e.allocStats[s] = &AllocStats{}
	}
}

// Strategy returns the active placement strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// SetStrategy switches the placement strategy without touching existing
// blocks.
func (e *Engine) SetStrategy(s Strategy) {
	e.strategy = s
}

// AllocateMemory places a request of the given size using the active
// strategy and returns the ID of the owning process. Non-positive sizes and
// exhausted spaces report failure; per-strategy counters are updated on every
// call regardless of outcome.
func (e *Engine) AllocateMemory(size int) (pid string, ok bool) {
	pid = fmt.Sprintf("P%d", e.processSeq)
	e.processSeq++

	if size <= 0 {
		logrus.Warnf("rejecting allocation of non-positive size %d", size)
		e.allocStats[e.strategy].Failures++
		return "", false
	}

	if e.strategy == BuddySystem {
		ok = e.buddy.Allocate(size, pid)
	} else {
		_, ok = e.region.Allocate(e.strategy, size, pid)
	}

	if ok {
		e.allocStats[e.strategy].Allocations++
		return pid, true
	}
	e.allocStats[e.strategy].Failures++
	return "", false
}

// DeallocateMemory frees blocks owned by pid under the active strategy
// family. blockID narrows a region deallocation to one block; it is ignored
// by the buddy allocator, which frees the process's leaf.
func (e *Engine) DeallocateMemory(pid, blockID string) bool {
	if e.strategy == BuddySystem {
		return e.buddy.Deallocate(pid)
	}
	return e.region.Deallocate(pid, blockID)
}

// Blocks returns the region allocator's block sequence in address order.
func (e *Engine) Blocks() []*Block {
	return e.region.Blocks()
}

// ProcessBlocks returns every region block owned by pid.
func (e *Engine) ProcessBlocks(pid string) []*Block {
	return e.region.ProcessBlocks(pid)
}

// BuddyLeaves returns the buddy tree's leaves in address order.
func (e *Engine) BuddyLeaves() []*BuddyNode {
	return e.buddy.Leaves()
}

// Fragmentation returns the region space's external fragmentation
// percentage.
func (e *Engine) Fragmentation() float64 {
	return e.region.Fragmentation()
}

// MemoryStats returns the linear space's occupancy counters.
func (e *Engine) MemoryStats() MemoryStats {
	return MemoryStats{
		Used:     e.region.Used(),
		Peak:     e.region.Peak(),
		Capacity: e.region.Capacity(),
	}
}

// UsageHistory returns the allocated total after each region allocation and
// free, oldest first.
func (e *Engine) UsageHistory() []int {
	return e.region.UsageHistory()
}

// AnalyzeFragmentation breaks fragmentation into its external and internal
// components. Internal waste counts the tail of each allocated region block
// past its last whole page, plus buddy power-of-two rounding.
func (e *Engine) AnalyzeFragmentation() FragmentationAnalysis {
	fa := FragmentationAnalysis{
		External:    e.region.Fragmentation(),
		BuddyWasted: e.buddy.InternalFragmentation(),
	}
	for _, b := range e.region.Blocks() {
		if b.Status != Allocated {
			continue
		}
		fa.WastedSpace += b.Size % e.paging.PageSize()
	}
	if used := e.region.Used(); used > 0 {
		fa.Internal = float64(fa.WastedSpace) / float64(used) * 100
	}
	return fa
}

// SetPageSize switches the paging page size, fully resetting paging state.
func (e *Engine) SetPageSize(size int) bool {
	return e.paging.SetPageSize(size)
}

// SetReplacementPolicy switches the page-replacement policy, fully resetting
// paging state.
func (e *Engine) SetReplacementPolicy(policy ReplacementPolicy) {
	e.paging.SetPolicy(policy)
}

// SetMaxFrames switches the physical frame count, fully resetting paging
// state.
func (e *Engine) SetMaxFrames(n int) bool {
	return e.paging.SetMaxFrames(n)
}

// AllocatePages breaks size into pages for pid and loads them.
func (e *Engine) AllocatePages(pid string, size int) []*Page {
	return e.paging.AllocatePages(pid, size)
}

// AccessPage simulates an access to a page of pid.
func (e *Engine) AccessPage(pid string, pageNumber int) bool {
	return e.paging.AccessPage(pid, pageNumber)
}

// CreateSegment records a named segment for pid backed by paging pages.
func (e *Engine) CreateSegment(pid string, size int, name string) *Segment {
	return e.segments.CreateSegment(pid, size, name)
}

// Segments returns every segment in creation order.
func (e *Engine) Segments() []*Segment {
	return e.segments.Segments()
}

// CacheAccess performs one cache lookup; see CacheSimulator.Access.
func (e *Engine) CacheAccess(address int, data string, isWrite bool) (hit bool, out string) {
	return e.cache.Access(address, data, isWrite)
}

// VMAccess translates one virtual address; see
// VirtualMemoryTranslator.Access.
func (e *Engine) VMAccess(virtualAddress int) (hit bool, physicalAddress int) {
	return e.vm.Access(virtualAddress)
}

// AllocStatsFor returns the allocation counters of one strategy.
func (e *Engine) AllocStatsFor(s Strategy) AllocStats {
	return *e.allocStats[s]
}

// PagingStats returns the paging summary.
func (e *Engine) PagingStats() PagingStats {
	return e.paging.Stats()
}

// CacheStats returns the cache summary.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// VMStats returns the virtual-memory summary.
func (e *Engine) VMStats() VMStats {
	return e.vm.Stats()
}

// Report assembles every subsystem's statistics.
func (e *Engine) Report() *Report {
	alloc := make(map[Strategy]AllocStats, len(e.allocStats))
	for s, st := range e.allocStats {
		alloc[s] = *st
	}
	return &Report{
		Alloc:         alloc,
		Memory:        e.MemoryStats(),
		Fragmentation: e.AnalyzeFragmentation(),
		Paging:        e.paging.Stats(),
		Cache:         e.cache.Stats(),
		VM:            e.vm.Stats(),
	}
}

// ResetPaging empties frames and page tables and zeroes paging counters.
func (e *Engine) ResetPaging() {
	e.paging.Reset()
}

// ResetSegmentation drops all segments and cascades into a paging reset.
func (e *Engine) ResetSegmentation() {
	e.segments.Reset()
}

// Reset restores every subsystem to its initial state.
func (e *Engine) Reset() {
	e.region.Reset()
	e.buddy.Reset()
	e.segments.Reset() // cascades into paging
	e.cache.Reset()
	e.vm.Reset()
	e.processSeq = 1
	e.resetStats()
}
