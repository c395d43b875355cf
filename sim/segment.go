package sim

// Segment is a named logical region of a process's memory, backed by the
// pages obtained in one AllocatePages call. Start is the segment's base
// offset in the owning process's logical space: each new segment begins
// where the process's previous one ended.
type Segment struct {
	Start int
	Size  int
	Owner string
	Name  string
	Pages []*Page
}

// SegmentTable maps processes to their named segments. Backing storage comes
// from the paging system, so a segment never outlives a paging reset.
type SegmentTable struct {
	paging    *PagingSystem
	segments  []*Segment
	byProcess map[string][]*Segment
}

// NewSegmentTable creates an empty table over the given paging system.
func NewSegmentTable(paging *PagingSystem) *SegmentTable {
	return &SegmentTable{
		paging:    paging,
		byProcess: make(map[string][]*Segment),
	}
}

// CreateSegment records a new segment for pid and obtains its backing pages
// from the paging system. Returns nil for a non-positive size.
func (st *SegmentTable) CreateSegment(pid string, size int, name string) *Segment {
	if size <= 0 {
		return nil
	}
	base := 0
	for _, prev := range st.byProcess[pid] {
		base += prev.Size
	}
	seg := &Segment{Start: base, Size: size, Owner: pid, Name: name}
	st.segments = append(st.segments, seg)
	st.byProcess[pid] = append(st.byProcess[pid], seg)
	seg.Pages = st.paging.AllocatePages(pid, size)
	return seg
}

// Segments returns every segment in creation order.
// Callers must not mutate the returned segments.
func (st *SegmentTable) Segments() []*Segment {
	return st.segments
}

// ProcessSegments returns the segments of pid in creation order.
func (st *SegmentTable) ProcessSegments(pid string) []*Segment {
	return st.byProcess[pid]
}

// Reset drops all segments and cascades into a paging reset, since segment
// pages are paging pages.
func (st *SegmentTable) Reset() {
	st.segments = nil
	st.byProcess = make(map[string][]*Segment)
	st.paging.Reset()
}
