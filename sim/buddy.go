package sim

import "github.com/sirupsen/logrus"

// BuddyNode is one node of the buddy tree. A node is either a leaf or split
// into exactly two children of half its size covering its range; a split node
// is never itself allocated.
type BuddyNode struct {
	Start     int
	Size      int // always a power of two
	Status    BlockStatus
	Owner     string
	Requested int // original request size, for internal-fragmentation reporting
	Split     bool
	Left      *BuddyNode
	Right     *BuddyNode
}

// BuddyAllocator manages a power-of-two space as a binary tree: allocation
// rounds the request up to the next power of two and splits recursively;
// deallocation merges free buddy pairs back toward the root.
type BuddyAllocator struct {
	root     *BuddyNode
	capacity int // requested capacity; the root covers nextPow2(capacity)
}

// NewBuddyAllocator creates a buddy tree whose root spans the next power of
// two at or above capacity.
func NewBuddyAllocator(capacity int) *BuddyAllocator {
	return &BuddyAllocator{
		root:     &BuddyNode{Start: 0, Size: nextPow2(capacity)},
		capacity: capacity,
	}
}

// nextPow2 returns the smallest power of two >= n (minimum 1).
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Root returns the tree root for inspection/rendering.
// Callers must not mutate the returned nodes.
func (ba *BuddyAllocator) Root() *BuddyNode {
	return ba.root
}

// Capacity returns the capacity the allocator was created with.
func (ba *BuddyAllocator) Capacity() int {
	return ba.capacity
}

// Allocate reserves a leaf of size nextPow2(size) for pid. ok is false when
// no fitting free leaf exists anywhere in the tree.
func (ba *BuddyAllocator) Allocate(size int, pid string) bool {
	if size <= 0 {
		return false
	}
	target := nextPow2(size)
	return ba.allocate(ba.root, target, size, pid)
}

// allocate descends the tree looking for a free leaf of exactly target size,
// splitting larger free leaves on the way down, left subtree first.
func (ba *BuddyAllocator) allocate(n *BuddyNode, target, requested int, pid string) bool {
	if n.Size < target {
		return false
	}
	if n.Split {
		return ba.allocate(n.Left, target, requested, pid) ||
			ba.allocate(n.Right, target, requested, pid)
	}
	if n.Status == Allocated {
		return false
	}
	if n.Size == target {
		n.Status = Allocated
		n.Owner = pid
		n.Requested = requested
		return true
	}
	// Free leaf larger than the target: split in two buddies and recurse.
	half := n.Size / 2
	n.Split = true
	n.Left = &BuddyNode{Start: n.Start, Size: half}
	n.Right = &BuddyNode{Start: n.Start + half, Size: half}
	logrus.Debugf("buddy: split [%d,%d) into two %d-blocks", n.Start, n.Start+n.Size, half)
	return ba.allocate(n.Left, target, requested, pid)
}

// Deallocate frees the leaf owned by pid and merges free buddy pairs bottom-up.
// Returns false when pid owns no leaf.
func (ba *BuddyAllocator) Deallocate(pid string) bool {
	return ba.deallocate(ba.root, pid)
}

func (ba *BuddyAllocator) deallocate(n *BuddyNode, pid string) bool {
	if n.Split {
		freed := ba.deallocate(n.Left, pid) || ba.deallocate(n.Right, pid)
		if freed && ba.mergeable(n) {
			n.Split = false
			n.Left = nil
			n.Right = nil
			logrus.Debugf("buddy: merged buddies into [%d,%d)", n.Start, n.Start+n.Size)
		}
		return freed
	}
	if n.Status == Allocated && n.Owner == pid {
		n.Status = Free
		n.Owner = ""
		n.Requested = 0
		return true
	}
	return false
}

// mergeable reports whether both children are free, unsplit leaves.
func (ba *BuddyAllocator) mergeable(n *BuddyNode) bool {
	return !n.Left.Split && n.Left.Status == Free &&
		!n.Right.Split && n.Right.Status == Free
}

// Leaves returns every leaf in address order, the flat view a renderer or
// stats reader wants.
func (ba *BuddyAllocator) Leaves() []*BuddyNode {
	var leaves []*BuddyNode
	var walk func(n *BuddyNode)
	walk = func(n *BuddyNode) {
		if n.Split {
			walk(n.Left)
			walk(n.Right)
			return
		}
		leaves = append(leaves, n)
	}
	walk(ba.root)
	return leaves
}

// InternalFragmentation returns the total size allocated beyond what was
// requested, summed over all allocated leaves.
func (ba *BuddyAllocator) InternalFragmentation() int {
	waste := 0
	for _, leaf := range ba.Leaves() {
		if leaf.Status == Allocated {
			waste += leaf.Size - leaf.Requested
		}
	}
	return waste
}

// Reset drops the whole tree back to a single free root.
func (ba *BuddyAllocator) Reset() {
	ba.root = &BuddyNode{Start: 0, Size: nextPow2(ba.capacity)}
}
