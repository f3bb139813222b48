package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/radixrunner/internal/config"
	"github.com/roach88/radixrunner/internal/engine"
	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/shadow"
)

// Scenario is one deterministic drive of a region.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is stamped on the trace. Defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Start is the raw counter value before the first step.
	Start Value `yaml:"start,omitempty"`

	// Policy is the observer policy, "live" (default) or "snapshot".
	Policy string `yaml:"policy,omitempty"`

	// Shadows are applied before the first step.
	Shadows []config.Shadow `yaml:"shadows,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	Tick      uint64         `yaml:"tick,omitempty"`
	Sample    bool           `yaml:"sample,omitempty"`
	Set       *Value         `yaml:"set,omitempty"`
	Configure *config.Shadow `yaml:"configure,omitempty"`
	Run       *RunStep       `yaml:"run,omitempty"`
}

// RunStep advances Ticks times and polls after every Every ticks.
type RunStep struct {
	Ticks uint64 `yaml:"ticks"`
	Every uint64 `yaml:"every,omitempty"`
}

func (s Step) kinds() int {
	n := 0
	if s.Tick > 0 {
		n++
	}
	if s.Sample {
		n++
	}
	if s.Set != nil {
		n++
	}
	if s.Configure != nil {
		n++
	}
	if s.Run != nil {
		n++
	}
	return n
}

// Assertion checks the final state.
type Assertion struct {
	Type   string        `yaml:"type"`
	Slot   int           `yaml:"slot,omitempty"`
	Digit  *config.Digit `yaml:"digit,omitempty"`
	Equals Value         `yaml:"equals"`
}

// Assertion type constants.
const (
	AssertShadowCounter = "shadow_counter"
	AssertOverflowCount = "overflow_count"
	AssertWraps         = "wraps"
	AssertRaw           = "raw"
)

// Value is a counter-sized number written in decimal or 0x hex.
type Value uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar", n.Line)
	}
	parsed, err := ir.ParseRaw(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*v = Value(parsed)
	return nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every .yaml and .yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, []string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if _, err := engine.ParsePolicy(s.Policy); err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Shadows = s.Shadows
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("shadows: %w", err)
	}

	for i, step := range s.Steps {
		if n := step.kinds(); n != 1 {
			return fmt.Errorf("steps[%d]: want exactly one of tick, sample, set, configure, run; got %d", i, n)
		}
		if step.Run != nil && step.Run.Ticks == 0 {
			return fmt.Errorf("steps[%d].run: ticks is required", i)
		}
		if c := step.Configure; c != nil {
			if c.Slot < 0 || c.Slot >= shadow.MaxSlots {
				return fmt.Errorf("steps[%d].configure: slot %d outside 0..%d", i, c.Slot, shadow.MaxSlots-1)
			}
			if err := c.ShadowConfig().Validate(); err != nil {
				return fmt.Errorf("steps[%d].configure: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertShadowCounter, AssertOverflowCount:
		if a.Slot < 0 || a.Slot >= shadow.MaxSlots {
			return fmt.Errorf("assertions[%d]: slot %d outside 0..%d", index, a.Slot, shadow.MaxSlots-1)
		}
	case AssertWraps:
		if a.Digit == nil {
			return fmt.Errorf("assertions[%d]: wraps requires digit", index)
		}
	case AssertRaw:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
