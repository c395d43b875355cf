package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/memsim-io/memsim/sim"
)

var (
	// CLI flags for engine construction
	logLevel   string // Log verbosity level
	memorySize int    // Linear address space capacity
	pageSize   int    // Paging page size
	maxFrames  int    // Physical frame count
	cacheLines int    // Cache line count
	lineSpan   int    // Addresses covered per cache line
	vmPageSize int    // Virtual-memory page size
	vmFrames   int    // Virtual-memory frame count
	algorithm  string // Initial placement strategy
	policy     string // Initial page-replacement policy

	// CLI flags for workload selection
	scenarioPath string // YAML scenario to replay
	randomOps    int    // Number of random operations (0 = disabled)
	seed         int64  // Seed for random workload generation
	maxRequest   int    // Largest random allocation request
	addressSpan  int    // Address range for random cache/vm traffic

	// CLI flags for snapshot persistence
	loadSnapshotPath string // Restore engine state from this file before running
	saveSnapshotPath string // Write engine state to this file after running
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "memsim",
	Short: "Simulator for classical OS memory-management mechanisms",
}

// runCmd builds an engine from CLI flags, drives it with a scenario file or
// a random workload, and prints the final report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the memory-management simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		engine, err := buildEngine()
		if err != nil {
			logrus.Fatalf("Unable to build engine: %v", err)
		}

		switch {
		case scenarioPath != "":
			scenario, err := sim.LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("Unable to load scenario: %v", err)
			}
			logrus.Infof("Replaying scenario %q (%d steps)", scenario.Name, len(scenario.Steps))
			if err := scenario.Apply(engine); err != nil {
				logrus.Fatalf("Scenario replay failed: %v", err)
			}
		case randomOps > 0:
			logrus.Infof("Running %d random operations with seed %d", randomOps, seed)
			summary := sim.RunRandomWorkload(engine, sim.WorkloadConfig{
				Ops:            randomOps,
				Seed:           seed,
				MaxRequestSize: maxRequest,
				AddressSpan:    addressSpan,
			})
			logrus.Infof("Workload: %d allocations (%d failed), %d deallocations, %d page / %d cache / %d vm accesses",
				summary.Allocations, summary.AllocFailures, summary.Deallocations,
				summary.PageAccesses, summary.CacheAccesses, summary.VMAccesses)
		default:
			logrus.Info("No scenario or random workload given; reporting engine state only.")
		}

		engine.Report().Print()

		if saveSnapshotPath != "" {
			if err := sim.SaveSnapshot(engine.Snapshot(), saveSnapshotPath); err != nil {
				logrus.Fatalf("Unable to save snapshot: %v", err)
			}
			logrus.Infof("Snapshot saved to %s", saveSnapshotPath)
		}
	},
}

// buildEngine restores a snapshot when one is given, otherwise constructs a
// fresh engine from the flag values.
func buildEngine() (*sim.Engine, error) {
	if loadSnapshotPath != "" {
		snap, err := sim.LoadSnapshot(loadSnapshotPath)
		if err != nil {
			return nil, err
		}
		return sim.RestoreEngine(snap)
	}

	strategy, err := sim.ParseStrategy(algorithm)
	if err != nil {
		return nil, err
	}
	replacement, err := sim.ParseReplacementPolicy(policy)
	if err != nil {
		return nil, err
	}
	return sim.NewEngine(sim.Config{
		MemorySize: memorySize,
		PageSize:   pageSize,
		MaxFrames:  maxFrames,
		CacheLines: cacheLines,
		LineSpan:   lineSpan,
		VMPageSize: vmPageSize,
		VMFrames:   vmFrames,
		Strategy:   strategy,
		Policy:     replacement,
	}), nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Engine geometry
	runCmd.Flags().IntVar(&memorySize, "memory-size", 100, "Total capacity of the linear address space")
	runCmd.Flags().IntVar(&pageSize, "page-size", 10, "Page size for the paging system")
	runCmd.Flags().IntVar(&maxFrames, "max-frames", 10, "Number of physical frames")
	runCmd.Flags().IntVar(&cacheLines, "cache-lines", 4, "Number of cache lines")
	runCmd.Flags().IntVar(&lineSpan, "line-span", 16, "Addresses covered per cache line")
	runCmd.Flags().IntVar(&vmPageSize, "vm-page-size", 256, "Virtual-memory page size")
	runCmd.Flags().IntVar(&vmFrames, "vm-frames", 8, "Virtual-memory frame count")
	runCmd.Flags().StringVar(&algorithm, "algorithm", "first_fit", "Placement strategy (first_fit, best_fit, worst_fit, next_fit, buddy)")
	runCmd.Flags().StringVar(&policy, "replacement", "FIFO", "Page-replacement policy (FIFO, LRU)")

	// Workload selection
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file to replay")
	runCmd.Flags().IntVar(&randomOps, "random-ops", 0, "Number of random operations to run (0 = disabled)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random workload generation")
	runCmd.Flags().IntVar(&maxRequest, "max-request", 32, "Largest random allocation request")
	runCmd.Flags().IntVar(&addressSpan, "address-span", 1024, "Address range for random cache/vm traffic")

	// Snapshot persistence
	runCmd.Flags().StringVar(&loadSnapshotPath, "load-snapshot", "", "Restore engine state from this JSON file")
	runCmd.Flags().StringVar(&saveSnapshotPath, "save-snapshot", "", "Write engine state to this JSON file after the run")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
