package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a scripted edit session
// against a single fresh lane, plus assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Lane is the target label of the lane the scenario edits.
	Lane string `yaml:"lane"`

	// Steps is the edit script, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final curve and undo history.
	Assertions []Assertion `yaml:"assertions"`

	// Golden, when present, samples the final committed curve for
	// golden file comparison.
	Golden *GoldenSpec `yaml:"golden,omitempty"`
}

// Step is one scripted edit. Exactly one of the fields is set.
type Step struct {
	Add     *AddStep     `yaml:"add,omitempty"`
	Move    *MoveStep    `yaml:"move,omitempty"`
	Delete  *DeleteStep  `yaml:"delete,omitempty"`
	Tension *TensionStep `yaml:"tension,omitempty"`
	Handles *HandlesStep `yaml:"handles,omitempty"`
	Draw    *DrawStep    `yaml:"draw,omitempty"`
	Undo    bool         `yaml:"undo,omitempty"`
	Redo    bool         `yaml:"redo,omitempty"`
}

// AddStep inserts one point. Type defaults to linear.
type AddStep struct {
	Label string  `yaml:"label,omitempty"`
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
	Type  string  `yaml:"type,omitempty"`
}

// MoveStep repositions a labeled point.
type MoveStep struct {
	Point string  `yaml:"point"`
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// DeleteStep removes labeled points as one compound step.
type DeleteStep struct {
	Points []string `yaml:"points"`
}

// TensionStep sets a labeled Linear point's tension.
type TensionStep struct {
	Point string  `yaml:"point"`
	Value float64 `yaml:"value"`
}

// HandlesStep sets a labeled Bezier point's control handles.
type HandlesStep struct {
	Point string     `yaml:"point"`
	In    HandleSpec `yaml:"in"`
	Out   HandleSpec `yaml:"out"`
}

// HandleSpec is a handle offset in a scenario file.
type HandleSpec struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// DrawStep runs a drawing gesture through the edit session.
// Mode is pencil, line, or curve.
type DrawStep struct {
	Mode    string       `yaml:"mode"`
	Samples []SampleSpec `yaml:"samples"`
}

// SampleSpec is one pointer sample in a draw step.
type SampleSpec struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Assertion validates the final curve or undo history.
type Assertion struct {
	Type string `yaml:"type"`

	// value_at
	Time      float64 `yaml:"time,omitempty"`
	Expect    float64 `yaml:"expect,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
	Default   float64 `yaml:"default,omitempty"`

	// point_count, undo_depth
	Count int `yaml:"count,omitempty"`

	// point_at
	Point string  `yaml:"point,omitempty"`
	Value float64 `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertValueAt    = "value_at"
	AssertPointCount = "point_count"
	AssertPointAt    = "point_at"
	AssertUndoDepth  = "undo_depth"
)

// GoldenSpec samples the final committed curve for golden comparison.
type GoldenSpec struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly instead of silently skipping steps.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Lane == "" {
		return fmt.Errorf("lane is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 && s.Golden == nil {
		return fmt.Errorf("a scenario needs assertions, a golden block, or both")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	if s.Golden != nil {
		if s.Golden.Step <= 0 {
			return fmt.Errorf("golden: step must be positive")
		}
		if s.Golden.To < s.Golden.From {
			return fmt.Errorf("golden: to must not precede from")
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	set := 0
	if step.Add != nil {
		set++
	}
	if step.Move != nil {
		set++
		if step.Move.Point == "" {
			return fmt.Errorf("steps[%d].move: point label is required", index)
		}
	}
	if step.Delete != nil {
		set++
		if len(step.Delete.Points) == 0 {
			return fmt.Errorf("steps[%d].delete: points list is required", index)
		}
	}
	if step.Tension != nil {
		set++
		if step.Tension.Point == "" {
			return fmt.Errorf("steps[%d].tension: point label is required", index)
		}
	}
	if step.Handles != nil {
		set++
		if step.Handles.Point == "" {
			return fmt.Errorf("steps[%d].handles: point label is required", index)
		}
	}
	if step.Draw != nil {
		set++
		switch step.Draw.Mode {
		case "pencil", "line", "curve":
		default:
			return fmt.Errorf("steps[%d].draw: unknown mode %q", index, step.Draw.Mode)
		}
		if len(step.Draw.Samples) < 2 {
			return fmt.Errorf("steps[%d].draw: at least two samples are required", index)
		}
	}
	if step.Undo {
		set++
	}
	if step.Redo {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one step kind per entry, got %d", index, set)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertValueAt:
		// Zero expect is legal; nothing more to check.
	case AssertPointCount, AssertUndoDepth:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPointAt:
		if a.Point == "" {
			return fmt.Errorf("assertions[%d]: point label is required for point_at", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
