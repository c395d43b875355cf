package sim

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the persisted-configuration record: everything needed to
// reconstruct an equivalent engine. It marshals to the JSON document the
// save/load collaborator stores on disk.
type Snapshot struct {
	MemorySize        int    `json:"memory_size"`
	PageSize          int    `json:"page_size"`
	MaxFrames         int    `json:"max_frames"`
	Algorithm         string `json:"algorithm"`
	ReplacementPolicy string `json:"replacement_algorithm"`

	Blocks     []BlockSnapshot           `json:"memory_blocks"`
	PageTable  map[string][]PageSnapshot `json:"page_table"`
	FrameTable map[int]FrameSnapshot     `json:"frame_table"`
	Segments   []SegmentSnapshot         `json:"segments"`
	AllocStats map[string]AllocStats     `json:"algorithm_stats"`

	PageFaults int `json:"page_faults"`
	PageHits   int `json:"page_hits"`

	ProcessCounter int   `json:"process_counter"`
	BlockCounter   int   `json:"block_counter"`
	LastAllocIndex int   `json:"last_allocated_index"`
	FrameLoadOrder []int `json:"frame_load_order"`
	PeakUsage      int   `json:"peak_memory"`
	UsageHistory   []int `json:"memory_usage_history"`
	Clock          int64 `json:"clock"`
}

// BlockSnapshot is one region block in persisted form.
type BlockSnapshot struct {
	Start     int    `json:"start"`
	Size      int    `json:"size"`
	Status    string `json:"status"`
	ProcessID string `json:"process_id,omitempty"`
	BlockID   string `json:"block_id,omitempty"`
}

// PageSnapshot is one page-table entry in persisted form.
type PageSnapshot struct {
	PageNumber  int   `json:"page_number"`
	Size        int   `json:"size"`
	Valid       bool  `json:"is_valid"`
	FrameNumber int   `json:"frame_number"` // -1 while evicted
	LastAccess  int64 `json:"last_access"`
}

// FrameSnapshot identifies the page resident in one frame.
type FrameSnapshot struct {
	ProcessID  string `json:"process_id"`
	PageNumber int    `json:"page_number"`
}

// SegmentSnapshot is one segment in persisted form. Pages holds the
// segment's own backing pages, which a later allocation for the same
// process may have detached from the live page table.
type SegmentSnapshot struct {
	Start     int            `json:"start"`
	Size      int            `json:"size"`
	ProcessID string         `json:"process_id"`
	Name      string         `json:"name"`
	Pages     []PageSnapshot `json:"pages"`
}

func pageSnapshots(pages []*Page) []PageSnapshot {
	entries := make([]PageSnapshot, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, PageSnapshot{
			PageNumber:  p.Number,
			Size:        p.Size,
			Valid:       p.Valid,
			FrameNumber: p.Frame,
			LastAccess:  p.LastAccess,
		})
	}
	return entries
}

func samePages(a, b []PageSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Snapshot captures the engine's current state in persisted form.
func (e *Engine) Snapshot() *Snapshot {
	snap := &Snapshot{
		MemorySize:        e.region.capacity,
		PageSize:          e.paging.pageSize,
		MaxFrames:         e.paging.maxFrames,
		Algorithm:         e.strategy.String(),
		ReplacementPolicy: e.paging.policy.String(),
		PageTable:         make(map[string][]PageSnapshot),
		FrameTable:        make(map[int]FrameSnapshot),
		AllocStats:        make(map[string]AllocStats),
		PageFaults:        e.paging.faults,
		PageHits:          e.paging.hits,
		ProcessCounter:    e.processSeq,
		BlockCounter:      e.region.blockSeq,
		LastAllocIndex:    e.region.lastIndex,
		FrameLoadOrder:    append([]int(nil), e.paging.loadOrder...),
		PeakUsage:         e.region.peak,
		UsageHistory:      append([]int(nil), e.region.history...),
		Clock:             e.clock.Now(),
	}
	for _, b := range e.region.blocks {
		snap.Blocks = append(snap.Blocks, BlockSnapshot{
			Start:     b.Start,
			Size:      b.Size,
			Status:    b.Status.String(),
			ProcessID: b.Owner,
			BlockID:   b.ID,
		})
	}
	for pid, pages := range e.paging.pageTable {
		snap.PageTable[pid] = pageSnapshots(pages)
	}
	for frame, p := range e.paging.frameTable {
		snap.FrameTable[frame] = FrameSnapshot{ProcessID: p.Owner, PageNumber: p.Number}
	}
	for _, seg := range e.segments.segments {
		snap.Segments = append(snap.Segments, SegmentSnapshot{
			Start:     seg.Start,
			Size:      seg.Size,
			ProcessID: seg.Owner,
			Name:      seg.Name,
			Pages:     pageSnapshots(seg.Pages),
		})
	}
	for s, st := range e.allocStats {
		snap.AllocStats[s.String()] = *st
	}
	return snap
}

// RestoreEngine reconstructs an engine from a snapshot. The result is
// equivalent to the engine the snapshot was taken from: identical block list,
// page tables, frame contents, and counters.
func RestoreEngine(snap *Snapshot) (*Engine, error) {
	strategy, err := ParseStrategy(snap.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	policy, err := ParseReplacementPolicy(snap.ReplacementPolicy)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	e := NewEngine(Config{
		MemorySize: snap.MemorySize,
		PageSize:   snap.PageSize,
		MaxFrames:  snap.MaxFrames,
		Strategy:   strategy,
		Policy:     policy,
	})
	e.clock.now = snap.Clock
	e.processSeq = snap.ProcessCounter

	// Region blocks; the allocated total is recomputed from them.
	e.region.blocks = nil
	for _, bs := range snap.Blocks {
		status := Free
		if bs.Status == Allocated.String() {
			status = Allocated
			e.region.used += bs.Size
		}
		e.region.blocks = append(e.region.blocks, &Block{
			Start:  bs.Start,
			Size:   bs.Size,
			Status: status,
			Owner:  bs.ProcessID,
			ID:     bs.BlockID,
		})
	}
	e.region.blockSeq = snap.BlockCounter
	e.region.lastIndex = snap.LastAllocIndex
	e.region.peak = snap.PeakUsage
	e.region.history = append([]int(nil), snap.UsageHistory...)

	// Page tables, then frame contents linked back to the same Page values.
	for pid, entries := range snap.PageTable {
		pages := make([]*Page, 0, len(entries))
		for _, ps := range entries {
			pages = append(pages, &Page{
				Number:     ps.PageNumber,
				Size:       ps.Size,
				Owner:      pid,
				Valid:      ps.Valid,
				Frame:      ps.FrameNumber,
				LastAccess: ps.LastAccess,
			})
		}
		e.paging.pageTable[pid] = pages
	}
	for frame, fs := range snap.FrameTable {
		pages, ok := e.paging.pageTable[fs.ProcessID]
		if !ok || fs.PageNumber < 0 || fs.PageNumber >= len(pages) {
			return nil, fmt.Errorf("restoring snapshot: frame %d references unknown page %d of %q",
				frame, fs.PageNumber, fs.ProcessID)
		}
		page := pages[fs.PageNumber]
		e.paging.frameTable[frame] = page
		e.paging.accessTime[frame] = page.LastAccess
	}
	e.paging.loadOrder = append([]int(nil), snap.FrameLoadOrder...)
	e.paging.faults = snap.PageFaults
	e.paging.hits = snap.PageHits

	// Segments. A segment whose pages are still the owner's live sequence
	// is re-linked to the restored page table; one that was detached by a
	// later allocation gets its own pages rebuilt from the snapshot.
	for _, ss := range snap.Segments {
		seg := &Segment{
			Start: ss.Start,
			Size:  ss.Size,
			Owner: ss.ProcessID,
			Name:  ss.Name,
		}
		if samePages(ss.Pages, snap.PageTable[ss.ProcessID]) {
			seg.Pages = e.paging.pageTable[ss.ProcessID]
		} else {
			for _, p := range ss.Pages {
				seg.Pages = append(seg.Pages, &Page{
					Number:     p.PageNumber,
					Size:       p.Size,
					Owner:      ss.ProcessID,
					Valid:      p.Valid,
					Frame:      p.FrameNumber,
					LastAccess: p.LastAccess,
				})
			}
		}
		e.segments.segments = append(e.segments.segments, seg)
		e.segments.byProcess[ss.ProcessID] = append(e.segments.byProcess[ss.ProcessID], seg)
	}

	for name, st := range snap.AllocStats {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
		copied := st
		e.allocStats[s] = &copied
	}
	return e, nil
}

// SaveSnapshot writes the snapshot to path as indented JSON.
func SaveSnapshot(snap *Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}
