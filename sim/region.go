package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// BlockStatus marks a block as free or allocated.
type BlockStatus int

const (
	Free BlockStatus = iota
	Allocated
)

func (s BlockStatus) String() string {
	if s == Free {
		return "free"
	}
	return "allocated"
}

// Block is one contiguous range of the linear space.
// Blocks are kept sorted by Start with no gaps and no overlap; the sum of all
// block sizes always equals the space's capacity.
type Block struct {
	Start  int
	Size   int
	Status BlockStatus
	Owner  string // owning process ID, "" when free
	ID     string // unique block ID ("B1", "B2", ...), "" when free
}

// RegionAllocator manages one linear address space as an ordered sequence of
// non-overlapping blocks and places requests with first/best/worst/next fit.
type RegionAllocator struct {
	capacity  int
	blocks    []*Block
	lastIndex int // index of the most recent successful allocation (next-fit resume point)
	blockSeq  int // next block ID number

	used    int   // total allocated size
	peak    int   // highest the allocated total has been since the last reset
	history []int // allocated total recorded after every allocation and free
}

// NewRegionAllocator creates an allocator whose space is one free block
// spanning [0, capacity).
func NewRegionAllocator(capacity int) *RegionAllocator {
	return &RegionAllocator{
		capacity: capacity,
		blocks:   []*Block{{Start: 0, Size: capacity, Status: Free}},
		blockSeq: 1,
	}
}

// Capacity returns the total size of the managed space.
func (r *RegionAllocator) Capacity() int {
	return r.capacity
}

// Blocks returns the live block sequence in address order.
// Callers must not mutate the returned blocks.
func (r *RegionAllocator) Blocks() []*Block {
	return r.blocks
}

// ProcessBlocks returns every block owned by pid, in address order.
func (r *RegionAllocator) ProcessBlocks(pid string) []*Block {
	var owned []*Block
	for _, b := range r.blocks {
		if b.Owner == pid {
			owned = append(owned, b)
		}
	}
	return owned
}

// Allocate places a request of the given size for pid using the strategy and
// returns the new block's ID. ok is false when no free block fits; the block
// sequence is untouched in that case.
func (r *RegionAllocator) Allocate(strategy Strategy, size int, pid string) (blockID string, ok bool) {
	if size <= 0 {
		return "", false
	}

	idx := -1
	switch strategy {
	case FirstFit:
		idx = r.findFirst(size)
	case BestFit:
		idx = r.findBest(size)
	case WorstFit:
		idx = r.findWorst(size)
	case NextFit:
		idx = r.findNext(size)
	default:
		logrus.Warnf("region allocator cannot place with strategy %v", strategy)
		return "", false
	}
	if idx < 0 {
		return "", false
	}

	blockID = r.split(idx, size, pid)
	if strategy == NextFit {
		r.lastIndex = idx
	}
	return blockID, true
}

// findFirst returns the index of the first free block that fits, or -1.
func (r *RegionAllocator) findFirst(size int) int {
	for i, b := range r.blocks {
		if b.Status == Free && b.Size >= size {
			return i
		}
	}
	return -1
}

// findBest returns the index of the smallest fitting free block.
// Ties go to the earliest block found (strict < comparison).
func (r *RegionAllocator) findBest(size int) int {
	best := -1
	for i, b := range r.blocks {
		if b.Status == Free && b.Size >= size {
			if best < 0 || b.Size < r.blocks[best].Size {
				best = i
			}
		}
	}
	return best
}

// findWorst returns the index of the largest fitting free block.
// Ties go to the earliest block found (strict > comparison).
func (r *RegionAllocator) findWorst(size int) int {
	worst := -1
	for i, b := range r.blocks {
		if b.Status == Free && b.Size >= size {
			if worst < 0 || b.Size > r.blocks[worst].Size {
				worst = i
			}
		}
	}
	return worst
}

// findNext scans circularly starting at the index after the last successful
// allocation, covering every block exactly once before giving up.
func (r *RegionAllocator) findNext(size int) int {
	n := len(r.blocks)
	start := (r.lastIndex + 1) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		b := r.blocks[idx]
		if b.Status == Free && b.Size >= size {
			return idx
		}
	}
	return -1
}

// split carves size out of the free block at idx. If the block is larger than
// the request, a free remainder block is inserted immediately after it. The
// resized block becomes allocated with a fresh block ID.
func (r *RegionAllocator) split(idx, size int, pid string) string {
	b := r.blocks[idx]
	if b.Size > size {
		remainder := &Block{Start: b.Start + size, Size: b.Size - size, Status: Free}
		r.blocks = append(r.blocks, nil)
		copy(r.blocks[idx+2:], r.blocks[idx+1:])
		r.blocks[idx+1] = remainder
	}
	b.Size = size
	b.Status = Allocated
	b.Owner = pid
	b.ID = fmt.Sprintf("B%d", r.blockSeq)
	r.blockSeq++

	r.used += size
	if r.used > r.peak {
		r.peak = r.used
	}
	r.history = append(r.history, r.used)
	return b.ID
}

// Deallocate frees blocks owned by pid. With blockID == "" every block of the
// process is freed; otherwise only the first block matching blockID. Returns
// false (and changes nothing) when no matching allocated block exists.
// Adjacent free blocks are coalesced after any successful free.
func (r *RegionAllocator) Deallocate(pid, blockID string) bool {
	freed := false
	for _, b := range r.blocks {
		if b.Owner != pid || b.Status != Allocated {
			continue
		}
		if blockID == "" {
			r.free(b)
			freed = true
		} else if b.ID == blockID {
			r.free(b)
			freed = true
			break
		}
	}
	if freed {
		r.coalesce()
	}
	return freed
}

func (r *RegionAllocator) free(b *Block) {
	logrus.Debugf("region: freeing block %s [%d,%d) of %s", b.ID, b.Start, b.Start+b.Size, b.Owner)
	b.Status = Free
	b.Owner = ""
	b.ID = ""
	r.used -= b.Size
	r.history = append(r.history, r.used)
}

// coalesce merges each free block into its immediate free successor in one
// left-to-right pass. After a merge the same index is re-checked, so chains
// of free blocks collapse into a single block.
func (r *RegionAllocator) coalesce() {
	i := 0
	for i < len(r.blocks)-1 {
		cur, next := r.blocks[i], r.blocks[i+1]
		if cur.Status == Free && next.Status == Free {
			cur.Size += next.Size
			r.blocks = append(r.blocks[:i+1], r.blocks[i+2:]...)
		} else {
			i++
		}
	}
}

// Used returns the total allocated size.
func (r *RegionAllocator) Used() int { return r.used }

// Peak returns the highest allocated total reached since the last reset.
func (r *RegionAllocator) Peak() int { return r.peak }

// UsageHistory returns the allocated total recorded after every allocation
// and free, oldest first.
func (r *RegionAllocator) UsageHistory() []int { return r.history }

// Fragmentation returns external fragmentation as a percentage:
// 1 - largest_free/total_free, or 0 when there are no free blocks.
func (r *RegionAllocator) Fragmentation() float64 {
	largest, total := 0, 0
	for _, b := range r.blocks {
		if b.Status != Free {
			continue
		}
		total += b.Size
		if b.Size > largest {
			largest = b.Size
		}
	}
	if total == 0 {
		return 0
	}
	return (1 - float64(largest)/float64(total)) * 100
}

// Reset restores the space to a single free block and restarts block IDs
// and usage tracking.
func (r *RegionAllocator) Reset() {
	r.blocks = []*Block{{Start: 0, Size: r.capacity, Status: Free}}
	r.lastIndex = 0
	r.blockSeq = 1
	r.used = 0
	r.peak = 0
	r.history = nil
}
