package sim

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Scenario is a replayable command sequence for the engine, loaded from YAML
// via LoadScenario(path). It stands in for the interactive driver: each step
// is one engine command, applied synchronously in order.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one engine command. Op selects the command; the remaining fields
// are that command's arguments (unused fields stay zero-valued).
type Step struct {
	Op        string `yaml:"op"`
	Size      int    `yaml:"size,omitempty"`
	PID       string `yaml:"pid,omitempty"`
	BlockID   string `yaml:"block_id,omitempty"`
	Page      int    `yaml:"page,omitempty"`
	Name      string `yaml:"name,omitempty"`
	Address   int    `yaml:"address,omitempty"`
	Data      string `yaml:"data,omitempty"`
	Write     bool   `yaml:"write,omitempty"`
	Algorithm string `yaml:"algorithm,omitempty"`
	Policy    string `yaml:"policy,omitempty"`
	Frames    int    `yaml:"frames,omitempty"`
}

// LoadScenario reads and decodes a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Apply replays every step against the engine. Expected simulation outcomes
// (failed allocation, missed access) are logged and do not stop the replay;
// a malformed step (unknown op, bad algorithm name) returns an error.
func (sc *Scenario) Apply(e *Engine) error {
	for i, step := range sc.Steps {
		if err := applyStep(e, step); err != nil {
			return fmt.Errorf("scenario %q step %d: %w", sc.Name, i, err)
		}
	}
	return nil
}

func applyStep(e *Engine, step Step) error {
	switch step.Op {
	case "set_algorithm":
		s, err := ParseStrategy(step.Algorithm)
		if err != nil {
			return err
		}
		e.SetStrategy(s)
	case "allocate":
		pid, ok := e.AllocateMemory(step.Size)
		if ok {
			logrus.Infof("allocated %d for %s", step.Size, pid)
		} else {
			logrus.Infof("allocation of %d failed", step.Size)
		}
	case "deallocate":
		if !e.DeallocateMemory(step.PID, step.BlockID) {
			logrus.Infof("nothing to deallocate for %s", step.PID)
		}
	case "set_page_size":
		if !e.SetPageSize(step.Size) {
			return fmt.Errorf("invalid page size %d", step.Size)
		}
	case "set_replacement":
		p, err := ParseReplacementPolicy(step.Policy)
		if err != nil {
			return err
		}
		e.SetReplacementPolicy(p)
	case "set_max_frames":
		if !e.SetMaxFrames(step.Frames) {
			return fmt.Errorf("invalid frame count %d", step.Frames)
		}
	case "allocate_pages":
		pages := e.AllocatePages(step.PID, step.Size)
		logrus.Infof("allocated %d pages for %s", len(pages), step.PID)
	case "access_page":
		if !e.AccessPage(step.PID, step.Page) {
			logrus.Infof("access to page %d of %s rejected", step.Page, step.PID)
		}
	case "create_segment":
		if seg := e.CreateSegment(step.PID, step.Size, step.Name); seg != nil {
			logrus.Infof("created segment %q (%d) for %s", seg.Name, seg.Size, seg.Owner)
		}
	case "cache_access":
		hit, _ := e.CacheAccess(step.Address, step.Data, step.Write)
		logrus.Debugf("cache access %d: hit=%v", step.Address, hit)
	case "vm_access":
		hit, phys := e.VMAccess(step.Address)
		logrus.Debugf("vm access %d: hit=%v physical=%d", step.Address, hit, phys)
	case "reset":
		e.Reset()
	case "reset_paging":
		e.ResetPaging()
	case "reset_segmentation":
		e.ResetSegmentation()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}
