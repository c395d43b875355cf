// Package sim provides the core engine for classical OS memory-management
// simulation: contiguous-region allocation, buddy allocation, demand paging,
// segmentation, a small associative cache, and virtual-address translation.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - engine.go: the Engine facade, the single entry point a driver (CLI/GUI)
//     talks to, one synchronous command at a time
//   - region.go: the ordered-block allocator (first/best/worst/next fit,
//     split and coalesce)
//   - paging.go: frames, page tables, and FIFO/LRU fault handling
//
// # Architecture
//
// Each subsystem is an independent component with its own state and stats:
//   - region.go: RegionAllocator over one linear space
//   - buddy.go: BuddyAllocator, a power-of-two binary tree over the same
//     kind of space (an alternative strategy, never active together with the
//     region allocator for one request)
//   - paging.go: PagingSystem with a fixed physical frame pool
//   - segment.go: SegmentTable, named segments backed by paging pages
//   - cache.go: CacheSimulator, fully associative with write-back accounting
//   - vm.go: VirtualMemoryTranslator, page-number to frame-number mapping
//
// All recency bookkeeping uses the logical Clock in clock.go instead of wall
// time, so eviction order is deterministic and testable.
//
// Expected "cannot satisfy this request" outcomes are reported as boolean
// results, never as errors; errors are reserved for I/O and decode failures
// (snapshot.go, scenario.go).
package sim
