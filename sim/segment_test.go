package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentTable_CreateSegment_BacksSegmentWithPages(t *testing.T) {
	// GIVEN a paging system with 10-unit pages
	paging := newTestPaging(10, 10, FIFO)
	st := NewSegmentTable(paging)

	// WHEN a 25-unit segment is created
	seg := st.CreateSegment("P1", 25, "code")

	// THEN the segment exists and its pages came from the paging system
	require.NotNil(t, seg)
	assert.Equal(t, "code", seg.Name)
	assert.Equal(t, "P1", seg.Owner)
	assert.Equal(t, 25, seg.Size)
	require.Len(t, seg.Pages, 3)
	assert.Equal(t, seg.Pages, paging.PageTable("P1"))
}

func TestSegmentTable_CreateSegment_RejectsNonPositiveSize(t *testing.T) {
	st := NewSegmentTable(newTestPaging(10, 10, FIFO))
	assert.Nil(t, st.CreateSegment("P1", 0, "bad"))
	assert.Empty(t, st.Segments())
}

func TestSegmentTable_ProcessSegments_KeepsCreationOrder(t *testing.T) {
	st := NewSegmentTable(newTestPaging(10, 10, FIFO))
	st.CreateSegment("P1", 10, "code")
	st.CreateSegment("P2", 10, "heap")
	st.CreateSegment("P1", 10, "stack")

	segs := st.ProcessSegments("P1")
	require.Len(t, segs, 2)
	assert.Equal(t, "code", segs[0].Name)
	assert.Equal(t, "stack", segs[1].Name)
	assert.Len(t, st.Segments(), 3)

	// Each segment starts where the process's previous one ended; P2's
	// segment does not shift P1's offsets.
	assert.Equal(t, 0, segs[0].Start)
	assert.Equal(t, 10, segs[1].Start)
}

func TestSegmentTable_Reset_CascadesIntoPagingReset(t *testing.T) {
	// GIVEN a segment whose pages are resident
	paging := newTestPaging(10, 10, FIFO)
	st := NewSegmentTable(paging)
	st.CreateSegment("P1", 25, "code")
	require.NotEmpty(t, paging.FrameTable())

	// WHEN segmentation is reset
	st.Reset()

	// THEN segments are gone and paging was reset with them
	assert.Empty(t, st.Segments())
	assert.Empty(t, st.ProcessSegments("P1"))
	assert.Empty(t, paging.FrameTable())
	assert.Nil(t, paging.PageTable("P1"))
	assert.Equal(t, 0, paging.Faults())
}
