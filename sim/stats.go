package sim

import "fmt"

// AllocStats counts allocation outcomes for one placement strategy.
type AllocStats struct {
	Allocations int `json:"allocations"`
	Failures    int `json:"failures"`
}

// SuccessRate returns the fraction of attempts that succeeded, 0 when the
// strategy was never tried.
func (s AllocStats) SuccessRate() float64 {
	total := s.Allocations + s.Failures
	if total == 0 {
		return 0
	}
	return float64(s.Allocations) / float64(total)
}

// MemoryStats summarizes linear-space occupancy.
type MemoryStats struct {
	Used     int
	Peak     int
	Capacity int
}

// FragmentationAnalysis separates external fragmentation (free space split
// into pieces too small to use) from internal waste (allocated space the
// requests never asked for).
type FragmentationAnalysis struct {
	External    float64 // 1 - largest_free/total_free, as a percentage
	Internal    float64 // wasted space as a share of the allocated total
	WastedSpace int     // allocated region space past the last whole page
	BuddyWasted int     // buddy space granted beyond the requested sizes
}

// PagingStats summarizes paging behavior at a point in time.
type PagingStats struct {
	Faults       int
	Hits         int
	FaultRate    float64
	UsedFrames   int
	MaxFrames    int
	OldestLoaded int // frame at the head of the FIFO load queue, -1 when empty
	LeastRecent  int // frame with the oldest access time, -1 when empty
}

// CacheStats summarizes cache behavior at a point in time.
type CacheStats struct {
	Hits       int
	Misses     int
	WriteBacks int
	HitRate    float64
}

// VMStats summarizes virtual-memory translation behavior at a point in time.
type VMStats struct {
	Hits         int
	Faults       int
	DiskAccesses int
	MappedPages  int
	HitRate      float64
}

// Report aggregates every subsystem's statistics for end-of-run display.
type Report struct {
	Alloc         map[Strategy]AllocStats
	Memory        MemoryStats
	Fragmentation FragmentationAnalysis
	Paging        PagingStats
	Cache         CacheStats
	VM            VMStats
}

// Print displays the aggregated statistics.
func (r *Report) Print() {
	fmt.Println("=== Simulation Report ===")
	for _, s := range Strategies() {
		st := r.Alloc[s]
		if st.Allocations == 0 && st.Failures == 0 {
			continue
		}
		fmt.Printf("%-10s : %d allocations, %d failures (%.0f%% success)\n",
			s, st.Allocations, st.Failures, st.SuccessRate()*100)
	}
	fmt.Printf("Memory Used / Peak   : %d / %d of %d\n", r.Memory.Used, r.Memory.Peak, r.Memory.Capacity)
	fmt.Printf("Fragmentation        : %.2f%% external, %.2f%% internal (%d + %d wasted)\n",
		r.Fragmentation.External, r.Fragmentation.Internal, r.Fragmentation.WastedSpace, r.Fragmentation.BuddyWasted)
	fmt.Printf("Page Faults / Hits   : %d / %d (fault rate %.2f)\n", r.Paging.Faults, r.Paging.Hits, r.Paging.FaultRate)
	fmt.Printf("Frames Used          : %d / %d\n", r.Paging.UsedFrames, r.Paging.MaxFrames)
	fmt.Printf("Cache Hits / Misses  : %d / %d (hit rate %.2f)\n", r.Cache.Hits, r.Cache.Misses, r.Cache.HitRate)
	fmt.Printf("Cache Write-backs    : %d\n", r.Cache.WriteBacks)
	fmt.Printf("VM Hits / Faults     : %d / %d (disk accesses %d)\n", r.VM.Hits, r.VM.Faults, r.VM.DiskAccesses)
}
