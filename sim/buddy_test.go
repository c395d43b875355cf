package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkBuddyInvariants verifies the tree: leaf sizes are powers of two, a
// split node has exactly two children of half its size covering its range,
// and a split node is never itself allocated.
func checkBuddyInvariants(t *testing.T, ba *BuddyAllocator) {
	t.Helper()
	var walk func(n *BuddyNode)
	walk = func(n *BuddyNode) {
		if n.Size&(n.Size-1) != 0 || n.Size <= 0 {
			t.Fatalf("node at %d has non-power-of-two size %d", n.Start, n.Size)
		}
		if !n.Split {
			if n.Left != nil || n.Right != nil {
				t.Fatalf("unsplit node at %d has children", n.Start)
			}
			return
		}
		if n.Status == Allocated {
			t.Fatalf("split node at %d is allocated", n.Start)
		}
		require.NotNil(t, n.Left)
		require.NotNil(t, n.Right)
		if n.Left.Size+n.Right.Size != n.Size {
			t.Fatalf("children of node at %d sum to %d, want %d", n.Start, n.Left.Size+n.Right.Size, n.Size)
		}
		if n.Left.Start != n.Start || n.Right.Start != n.Start+n.Size/2 {
			t.Fatalf("children of node at %d do not cover its range", n.Start)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(ba.Root())
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32, 100: 128}
	for in, want := range cases {
		assert.Equal(t, want, nextPow2(in), "nextPow2(%d)", in)
	}
}

func TestBuddyAllocator_Allocate_RoundsUpAndSplitsLeftFirst(t *testing.T) {
	// GIVEN an empty 128-unit tree
	ba := NewBuddyAllocator(128)

	// WHEN 10 units are requested
	require.True(t, ba.Allocate(10, "P1"))

	// THEN the leftmost 16-leaf is allocated (10 rounded up to 16)
	leaves := ba.Leaves()
	assert.Equal(t, 0, leaves[0].Start)
	assert.Equal(t, 16, leaves[0].Size)
	assert.Equal(t, Allocated, leaves[0].Status)
	assert.Equal(t, "P1", leaves[0].Owner)
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_Allocate_PlacesSiblingInBuddy(t *testing.T) {
	ba := NewBuddyAllocator(64)
	require.True(t, ba.Allocate(16, "P1"))
	require.True(t, ba.Allocate(16, "P2"))

	leaves := ba.Leaves()
	assert.Equal(t, "P1", leaves[0].Owner)
	assert.Equal(t, "P2", leaves[1].Owner)
	assert.Equal(t, 16, leaves[1].Start)
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_Allocate_FailsWhenExhausted(t *testing.T) {
	// GIVEN a 32-unit tree fully occupied by two 16-leaves
	ba := NewBuddyAllocator(32)
	require.True(t, ba.Allocate(16, "P1"))
	require.True(t, ba.Allocate(9, "P2")) // rounds up to 16

	// THEN nothing else fits anywhere
	assert.False(t, ba.Allocate(1, "P3"))
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_Allocate_RejectsNonPositiveSize(t *testing.T) {
	ba := NewBuddyAllocator(64)
	assert.False(t, ba.Allocate(0, "P1"))
	assert.False(t, ba.Allocate(-4, "P1"))
}

func TestBuddyAllocator_Deallocate_MergesFreeBuddies(t *testing.T) {
	// GIVEN two sibling 16-leaves in a 32-tree
	ba := NewBuddyAllocator(32)
	require.True(t, ba.Allocate(16, "P1"))
	require.True(t, ba.Allocate(16, "P2"))

	// WHEN only P1 is freed
	require.True(t, ba.Deallocate("P1"))

	// THEN no merge yet: the buddy is still allocated
	assert.True(t, ba.Root().Split)

	// WHEN P2 is freed too
	require.True(t, ba.Deallocate("P2"))

	// THEN the buddies merged back into the root leaf
	assert.False(t, ba.Root().Split)
	assert.Equal(t, Free, ba.Root().Status)
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_Deallocate_MergesUpTowardRoot(t *testing.T) {
	// GIVEN a deep split: one 8-leaf allocated in a 64-tree
	ba := NewBuddyAllocator(64)
	require.True(t, ba.Allocate(8, "P1"))

	// WHEN the single allocation is freed
	require.True(t, ba.Deallocate("P1"))

	// THEN the merge cascades all the way to the root
	assert.False(t, ba.Root().Split)
	assert.Equal(t, 64, ba.Root().Size)
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_Deallocate_UnknownProcess_ReturnsFalse(t *testing.T) {
	ba := NewBuddyAllocator(64)
	require.True(t, ba.Allocate(16, "P1"))
	assert.False(t, ba.Deallocate("P9"))
	checkBuddyInvariants(t, ba)
}

func TestBuddyAllocator_InternalFragmentation(t *testing.T) {
	ba := NewBuddyAllocator(64)
	require.True(t, ba.Allocate(10, "P1")) // occupies 16, wastes 6
	require.True(t, ba.Allocate(5, "P2"))  // occupies 8, wastes 3

	assert.Equal(t, 9, ba.InternalFragmentation())
}

func TestBuddyAllocator_RootRoundsCapacityUp(t *testing.T) {
	ba := NewBuddyAllocator(100)
	assert.Equal(t, 128, ba.Root().Size)
	assert.Equal(t, 100, ba.Capacity())
}

func TestBuddyAllocator_Reset(t *testing.T) {
	ba := NewBuddyAllocator(64)
	require.True(t, ba.Allocate(8, "P1"))

	ba.Reset()

	assert.False(t, ba.Root().Split)
	assert.Equal(t, Free, ba.Root().Status)
	assert.Len(t, ba.Leaves(), 1)
}
