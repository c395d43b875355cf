package sim

import (
	"fmt"
	"math/rand"
)

// WorkloadConfig parameterizes random workload generation. Two runs with the
// same seed and configuration produce identical engine state.
type WorkloadConfig struct {
	Ops            int   // number of operations to issue
	Seed           int64 // RNG seed
	MaxRequestSize int   // allocation sizes drawn from [1, MaxRequestSize]
	AddressSpan    int   // cache/vm addresses drawn from [0, AddressSpan)
}

// WorkloadSummary counts what a random workload actually did.
type WorkloadSummary struct {
	Allocations   int
	AllocFailures int
	Deallocations int
	PageAccesses  int
	CacheAccesses int
	VMAccesses    int
}

// RunRandomWorkload drives the engine with a seeded mix of allocations,
// deallocations, page accesses, and cache/vm traffic. It exists so the CLI
// can exercise every subsystem without a hand-written scenario.
func RunRandomWorkload(e *Engine, cfg WorkloadConfig) WorkloadSummary {
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 32
	}
	if cfg.AddressSpan <= 0 {
		cfg.AddressSpan = 1024
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var summary WorkloadSummary
	var live []string // processes with a region/buddy block
	var paged []string

	for i := 0; i < cfg.Ops; i++ {
		switch roll := rng.Intn(100); {
		case roll < 35: // allocate
			size := 1 + rng.Intn(cfg.MaxRequestSize)
			if pid, ok := e.AllocateMemory(size); ok {
				summary.Allocations++
				live = append(live, pid)
			} else {
				summary.AllocFailures++
			}
		case roll < 50: // deallocate a random live process
			if len(live) == 0 {
				continue
			}
			idx := rng.Intn(len(live))
			if e.DeallocateMemory(live[idx], "") {
				summary.Deallocations++
			}
			live = append(live[:idx], live[idx+1:]...)
		case roll < 65: // page traffic
			if len(paged) == 0 || rng.Intn(4) == 0 {
				pid := fmt.Sprintf("W%d", len(paged)+1)
				size := 1 + rng.Intn(cfg.MaxRequestSize)
				e.AllocatePages(pid, size)
				paged = append(paged, pid)
				continue
			}
			pid := paged[rng.Intn(len(paged))]
			pageCount := len(e.paging.PageTable(pid))
			if pageCount == 0 {
				continue
			}
			if e.AccessPage(pid, rng.Intn(pageCount)) {
				summary.PageAccesses++
			}
		case roll < 85: // cache traffic
			addr := rng.Intn(cfg.AddressSpan)
			e.CacheAccess(addr, "", rng.Intn(2) == 0)
			summary.CacheAccesses++
		default: // vm traffic
			e.VMAccess(rng.Intn(cfg.AddressSpan))
			summary.VMAccesses++
		}
	}
	return summary
}
