package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_DecodesSteps(t *testing.T) {
	path := writeScenario(t, `
name: smoke
steps:
  - op: set_algorithm
    algorithm: best_fit
  - op: allocate
    size: 30
  - op: cache_access
    address: 64
    data: v1
    write: true
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "best_fit", sc.Steps[0].Algorithm)
	assert.Equal(t, 30, sc.Steps[1].Size)
	assert.True(t, sc.Steps[2].Write)
}

func TestLoadScenario_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestScenario_Apply_DrivesEngine(t *testing.T) {
	// The canonical first-fit walkthrough as a scenario file.
	path := writeScenario(t, `
name: walkthrough
steps:
  - op: allocate
    size: 30
  - op: allocate
    size: 40
  - op: deallocate
    pid: P1
  - op: allocate
    size: 20
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	e := NewEngine(Config{MemorySize: 100})
	require.NoError(t, sc.Apply(e))

	assert.InDelta(t, 25.0, e.Fragmentation(), 1e-9)
	assert.Equal(t, 3, e.AllocStatsFor(FirstFit).Allocations)
}

func TestScenario_Apply_PagingAndSegments(t *testing.T) {
	path := writeScenario(t, `
name: paging
steps:
  - op: set_page_size
    size: 10
  - op: set_max_frames
    frames: 2
  - op: set_replacement
    policy: LRU
  - op: create_segment
    pid: P1
    size: 25
    name: code
  - op: access_page
    pid: P1
    page: 0
  - op: vm_access
    address: 512
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	e := NewEngine(Config{MemorySize: 100})
	require.NoError(t, sc.Apply(e))

	require.Len(t, e.Segments(), 1)
	assert.Equal(t, "code", e.Segments()[0].Name)
	stats := e.PagingStats()
	// 3 pages into 2 frames fault once at load; re-accessing the evicted
	// page 0 faults it back in.
	assert.Equal(t, 2, stats.Faults)
	assert.Equal(t, 1, e.VMStats().Faults)
}

func TestScenario_Apply_ExpectedFailuresDoNotStopReplay(t *testing.T) {
	path := writeScenario(t, `
name: failures
steps:
  - op: allocate
    size: 500
  - op: deallocate
    pid: P404
  - op: access_page
    pid: P404
    page: 7
  - op: allocate
    size: 10
`)
	sc, err := LoadScenario(path)
	require.NoError(t, err)

	e := NewEngine(Config{MemorySize: 100})
	require.NoError(t, sc.Apply(e))
	assert.Equal(t, AllocStats{Allocations: 1, Failures: 1}, e.AllocStatsFor(FirstFit))
}

func TestScenario_Apply_UnknownOp_ReturnsError(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []Step{{Op: "defragment"}}}
	err := sc.Apply(NewEngine(Config{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defragment")
}

func TestScenario_Apply_BadAlgorithmName_ReturnsError(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Op: "set_algorithm", Algorithm: "magic"}}}
	assert.Error(t, sc.Apply(NewEngine(Config{})))
}
