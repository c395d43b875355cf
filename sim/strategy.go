package sim

import "fmt"

// Strategy selects how AllocateMemory places a request.
type Strategy int

const (
	FirstFit Strategy = iota // first free block that fits
	BestFit                  // smallest free block that fits, ties to the earliest
	WorstFit                 // largest free block that fits, ties to the earliest
	NextFit                  // first fit, resuming after the previous allocation
	BuddySystem              // power-of-two buddy tree
)

var strategyNames = map[Strategy]string{
	FirstFit:    "first_fit",
	BestFit:     "best_fit",
	WorstFit:    "worst_fit",
	NextFit:     "next_fit",
	BuddySystem: "buddy",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a config/CLI name to a Strategy.
// Valid names: "first_fit", "best_fit", "worst_fit", "next_fit", "buddy".
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return FirstFit, fmt.Errorf("unknown allocation strategy %q", name)
}

// Strategies lists all strategies in a stable order for stats reporting.
func Strategies() []Strategy {
	return []Strategy{FirstFit, BestFit, WorstFit, NextFit, BuddySystem}
}

// ReplacementPolicy selects the page-fault victim.
type ReplacementPolicy int

const (
	FIFO ReplacementPolicy = iota // evict the longest-resident page
	LRU                           // evict the least-recently-accessed page
)

func (p ReplacementPolicy) String() string {
	switch p {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseReplacementPolicy maps a config/CLI name to a ReplacementPolicy.
// Valid names: "FIFO", "LRU".
func ParseReplacementPolicy(name string) (ReplacementPolicy, error) {
	switch name {
	case "FIFO":
		return FIFO, nil
	case "LRU":
		return LRU, nil
	}
	return FIFO, fmt.Errorf("unknown replacement policy %q", name)
}
