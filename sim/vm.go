package sim

import "github.com/sirupsen/logrus"

// VirtualMemoryTranslator maps virtual page numbers to physical frame numbers
// with on-demand loading. When every frame is taken it evicts the
// oldest-inserted mapping (deterministic FIFO), so a page number appears in
// the mapping iff it currently occupies a frame.
type VirtualMemoryTranslator struct {
	pageSize   int
	pageTable  map[int]int // virtual page number -> frame number
	freeFrames []int
	loadOrder  []int // page numbers in mapping-insertion order
	history    []int // page numbers in access order

	hits         int
	faults       int
	diskAccesses int
}

// NewVirtualMemoryTranslator creates a translator with numFrames free frames.
func NewVirtualMemoryTranslator(pageSize, numFrames int) *VirtualMemoryTranslator {
	vm := &VirtualMemoryTranslator{pageSize: pageSize}
	vm.clear(numFrames)
	return vm
}

func (vm *VirtualMemoryTranslator) clear(numFrames int) {
	vm.pageTable = make(map[int]int)
	vm.freeFrames = make([]int, numFrames)
	for i := range vm.freeFrames {
		vm.freeFrames[i] = i
	}
	vm.loadOrder = nil
	vm.history = nil
	vm.hits = 0
	vm.faults = 0
	vm.diskAccesses = 0
}

// Access translates a virtual address. A mapped page is a hit; an unmapped
// page faults, claims a free frame (or the frame of the oldest-inserted
// mapping), and the translation still succeeds. Returns false for a negative
// address.
func (vm *VirtualMemoryTranslator) Access(virtualAddress int) (hit bool, physicalAddress int) {
	if virtualAddress < 0 {
		return false, -1
	}
	page := virtualAddress / vm.pageSize
	offset := virtualAddress % vm.pageSize
	vm.history = append(vm.history, page)

	if frame, ok := vm.pageTable[page]; ok {
		vm.hits++
		return true, frame*vm.pageSize + offset
	}

	vm.faults++
	vm.diskAccesses++

	var frame int
	if len(vm.freeFrames) > 0 {
		frame = vm.freeFrames[0]
		vm.freeFrames = vm.freeFrames[1:]
	} else {
		victim := vm.loadOrder[0]
		vm.loadOrder = vm.loadOrder[1:]
		frame = vm.pageTable[victim]
		delete(vm.pageTable, victim)
		logrus.Debugf("vm: evicting page %d from frame %d", victim, frame)
	}

	vm.pageTable[page] = frame
	vm.loadOrder = append(vm.loadOrder, page)
	return false, frame*vm.pageSize + offset
}

// PageTable returns the live page-number -> frame-number mapping.
// Callers must not mutate it.
func (vm *VirtualMemoryTranslator) PageTable() map[int]int {
	return vm.pageTable
}

// History returns the accessed page numbers in order.
func (vm *VirtualMemoryTranslator) History() []int {
	return vm.history
}

// Hits returns the translation-hit count.
func (vm *VirtualMemoryTranslator) Hits() int { return vm.hits }

// Faults returns the translation-fault count.
func (vm *VirtualMemoryTranslator) Faults() int { return vm.faults }

// DiskAccesses returns the simulated backing-store access count. Disk access
// is a counter, not a blocking operation.
func (vm *VirtualMemoryTranslator) DiskAccesses() int { return vm.diskAccesses }

// Stats returns a point-in-time summary of translation behavior.
func (vm *VirtualMemoryTranslator) Stats() VMStats {
	stats := VMStats{
		Hits:         vm.hits,
		Faults:       vm.faults,
		DiskAccesses: vm.diskAccesses,
		MappedPages:  len(vm.pageTable),
	}
	if total := vm.hits + vm.faults; total > 0 {
		stats.HitRate = float64(vm.hits) / float64(total)
	}
	return stats
}

// Reset drops all mappings and history and frees every frame.
func (vm *VirtualMemoryTranslator) Reset() {
	vm.clear(len(vm.freeFrames) + len(vm.pageTable))
}
