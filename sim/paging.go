package sim

import "github.com/sirupsen/logrus"

// Page is one fixed-size logical unit of a process's address space.
// Valid is true iff the page currently occupies a physical frame.
type Page struct {
	Number     int
	Size       int
	Owner      string
	Valid      bool
	Frame      int   // occupied frame number, -1 while evicted
	LastAccess int64 // logical time of the most recent load or access
}

// PagingSystem manages a fixed pool of physical frames and one page table per
// process, with demand loading and FIFO or LRU victim selection.
type PagingSystem struct {
	pageSize  int
	maxFrames int
	policy    ReplacementPolicy
	clock     *Clock

	pageTable  map[string][]*Page // process ID -> its pages in order
	frameTable map[int]*Page      // frame number -> resident page
	loadOrder  []int              // frame numbers in load order (FIFO queue)
	accessTime map[int]int64      // frame number -> logical last-access time

	faults int
	hits   int
}

// NewPagingSystem creates an empty paging system.
// pageSize and maxFrames must be positive.
func NewPagingSystem(pageSize, maxFrames int, policy ReplacementPolicy, clock *Clock) *PagingSystem {
	ps := &PagingSystem{
		pageSize:  pageSize,
		maxFrames: maxFrames,
		policy:    policy,
		clock:     clock,
	}
	ps.clear()
	return ps
}

func (ps *PagingSystem) clear() {
	ps.pageTable = make(map[string][]*Page)
	ps.frameTable = make(map[int]*Page)
	ps.loadOrder = nil
	ps.accessTime = make(map[int]int64)
	ps.faults = 0
	ps.hits = 0
}

// Reset empties all frames and page tables and zeroes the counters.
func (ps *PagingSystem) Reset() {
	ps.clear()
}

// PageSize returns the active page size.
func (ps *PagingSystem) PageSize() int { return ps.pageSize }

// MaxFrames returns the physical frame capacity.
func (ps *PagingSystem) MaxFrames() int { return ps.maxFrames }

// Policy returns the active replacement policy.
func (ps *PagingSystem) Policy() ReplacementPolicy { return ps.policy }

// SetPageSize switches the page size and fully resets paging state: frame
// contents are not portable across page-size changes.
func (ps *PagingSystem) SetPageSize(size int) bool {
	if size <= 0 {
		return false
	}
	ps.pageSize = size
	ps.Reset()
	return true
}

// SetPolicy switches the replacement policy and fully resets paging state.
func (ps *PagingSystem) SetPolicy(policy ReplacementPolicy) {
	ps.policy = policy
	ps.Reset()
}

// SetMaxFrames switches the physical frame capacity and fully resets paging
// state.
func (ps *PagingSystem) SetMaxFrames(n int) bool {
	if n <= 0 {
		return false
	}
	ps.maxFrames = n
	ps.Reset()
	return true
}

// PageTable returns the pages of pid in page-number order, or nil.
// Callers must not mutate the returned pages.
func (ps *PagingSystem) PageTable(pid string) []*Page {
	return ps.pageTable[pid]
}

// FrameTable returns the frame-number -> resident-page map.
// Callers must not mutate it.
func (ps *PagingSystem) FrameTable() map[int]*Page {
	return ps.frameTable
}

// AllocatePages splits size into ceil(size/pageSize) pages for pid (the last
// page truncated to the remainder) and loads each in order: directly into a
// free frame while any remain, through the fault path afterwards. The new
// page sequence replaces any previous pages of pid; the replaced pages give
// their frames back first, so no frame keeps referencing a page that is no
// longer in any page table.
func (ps *PagingSystem) AllocatePages(pid string, size int) []*Page {
	if size <= 0 {
		return nil
	}
	if old, ok := ps.pageTable[pid]; ok {
		ps.release(old)
	}
	numPages := (size + ps.pageSize - 1) / ps.pageSize
	pages := make([]*Page, 0, numPages)
	for i := 0; i < numPages; i++ {
		pageSize := ps.pageSize
		if rem := size - i*ps.pageSize; rem < pageSize {
			pageSize = rem
		}
		page := &Page{Number: i, Size: pageSize, Owner: pid, Frame: -1}
		pages = append(pages, page)

		if len(ps.frameTable) < ps.maxFrames {
			ps.install(page, ps.freeFrame())
		} else {
			ps.handlePageFault(page)
		}
	}
	ps.pageTable[pid] = pages
	return pages
}

// release detaches pages from their frames without counting faults; used
// when a process's page sequence is replaced wholesale.
func (ps *PagingSystem) release(pages []*Page) {
	for _, p := range pages {
		if !p.Valid {
			continue
		}
		delete(ps.frameTable, p.Frame)
		delete(ps.accessTime, p.Frame)
		ps.removeFromLoadOrder(p.Frame)
		p.Valid = false
		p.Frame = -1
	}
}

// freeFrame returns the lowest unoccupied frame number, or -1 when every
// frame is taken. Released frames leave holes, so the frame count alone does
// not identify the next free one.
func (ps *PagingSystem) freeFrame() int {
	for f := 0; f < ps.maxFrames; f++ {
		if _, used := ps.frameTable[f]; !used {
			return f
		}
	}
	return -1
}

// install makes page resident in frame and resets its bookkeeping.
func (ps *PagingSystem) install(page *Page, frame int) {
	now := ps.clock.Tick()
	ps.frameTable[frame] = page
	page.Frame = frame
	page.Valid = true
	page.LastAccess = now
	ps.accessTime[frame] = now
	ps.loadOrder = append(ps.loadOrder, frame)
}

// handlePageFault loads page into a frame, evicting a victim per the active
// policy when every frame is occupied. The global fault counter is bumped on
// every call.
func (ps *PagingSystem) handlePageFault(page *Page) {
	ps.faults++

	if len(ps.frameTable) < ps.maxFrames {
		ps.install(page, ps.freeFrame())
		return
	}

	var victim int
	switch ps.policy {
	case FIFO:
		victim = ps.loadOrder[0]
		ps.loadOrder = ps.loadOrder[1:]
	case LRU:
		victim = ps.lruFrame()
		ps.removeFromLoadOrder(victim)
	}

	old := ps.frameTable[victim]
	old.Valid = false
	old.Frame = -1
	logrus.Debugf("paging: %v evicts page %d of %s from frame %d", ps.policy, old.Number, old.Owner, victim)

	ps.install(page, victim)
}

// lruFrame returns the occupied frame with the minimum last-access time.
func (ps *PagingSystem) lruFrame() int {
	best := -1
	var bestTime int64
	for frame := range ps.frameTable {
		t := ps.accessTime[frame]
		if best < 0 || t < bestTime {
			best = frame
			bestTime = t
		}
	}
	return best
}

func (ps *PagingSystem) removeFromLoadOrder(frame int) {
	for i, f := range ps.loadOrder {
		if f == frame {
			ps.loadOrder = append(ps.loadOrder[:i], ps.loadOrder[i+1:]...)
			return
		}
	}
}

// AccessPage simulates an access to page pageNumber of pid. It returns false
// only for an unknown process or an out-of-range page number; an access to an
// evicted page faults it back in and still succeeds.
func (ps *PagingSystem) AccessPage(pid string, pageNumber int) bool {
	pages, ok := ps.pageTable[pid]
	if !ok || pageNumber < 0 || pageNumber >= len(pages) {
		return false
	}
	page := pages[pageNumber]
	if page.Valid {
		ps.hits++
		now := ps.clock.Tick()
		page.LastAccess = now
		ps.accessTime[page.Frame] = now
		return true
	}
	ps.handlePageFault(page)
	return true
}

// Faults returns the page-fault count.
func (ps *PagingSystem) Faults() int { return ps.faults }

// Hits returns the page-hit count.
func (ps *PagingSystem) Hits() int { return ps.hits }

// Stats returns a point-in-time summary of paging behavior.
func (ps *PagingSystem) Stats() PagingStats {
	stats := PagingStats{
		Faults:       ps.faults,
		Hits:         ps.hits,
		UsedFrames:   len(ps.frameTable),
		MaxFrames:    ps.maxFrames,
		OldestLoaded: -1,
		LeastRecent:  -1,
	}
	if total := ps.faults + ps.hits; total > 0 {
		stats.FaultRate = float64(ps.faults) / float64(total)
	}
	if len(ps.loadOrder) > 0 {
		stats.OldestLoaded = ps.loadOrder[0]
	}
	if len(ps.frameTable) > 0 {
		stats.LeastRecent = ps.lruFrame()
	}
	return stats
}
