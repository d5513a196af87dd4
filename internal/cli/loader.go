package cli

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
)

// Load error codes, stable across releases for scripted callers.
const (
	ErrCodeRead      = "E101" // file unreadable
	ErrCodeParse     = "E102" // malformed YAML
	ErrCodeEmpty     = "E103" // no lanes or clips defined
	ErrCodeBadType   = "E104" // unknown curve type
	ErrCodeBadValue  = "E105" // NaN or infinite time/value
	ErrCodeTension   = "E106" // tension outside [-1, 1]
	ErrCodeHandle    = "E107" // handle offset with the wrong sign
	ErrCodeDupTarget = "E108" // two lanes with the same target
)

// LoadError is one problem found while loading or validating a lane
// definition file.
type LoadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Owner   string `json:"owner,omitempty"` // lane target or clip name
	Index   int    `json:"index,omitempty"` // point index within the owner
}

func (e *LoadError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Owner, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HandleDef is a Bezier control handle in a definition file.
type HandleDef struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// PointDef is one automation point in a definition file. Type defaults
// to linear when omitted.
type PointDef struct {
	Time    float64    `yaml:"time"`
	Value   float64    `yaml:"value"`
	Type    string     `yaml:"type,omitempty"`
	Tension float64    `yaml:"tension,omitempty"`
	In      *HandleDef `yaml:"in,omitempty"`
	Out     *HandleDef `yaml:"out,omitempty"`
}

// LaneDef is a timeline lane in a definition file.
type LaneDef struct {
	Target  string     `yaml:"target"`
	Visible *bool      `yaml:"visible,omitempty"`
	Points  []PointDef `yaml:"points,omitempty"`
}

// ClipDef is a clip with clip-relative points in a definition file.
type ClipDef struct {
	Name   string     `yaml:"name"`
	Points []PointDef `yaml:"points,omitempty"`
}

// Definition is a full YAML lane definition file.
type Definition struct {
	Lanes []LaneDef `yaml:"lanes,omitempty"`
	Clips []ClipDef `yaml:"clips,omitempty"`
}

// LoadDefinition reads and parses a lane definition file. Parse errors
// are returned as LoadErrors; validation is a separate pass so callers
// can collect all problems at once.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error()}
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error()}
	}
	return &def, nil
}

// ValidateDefinition checks a parsed definition against the engine's
// invariants and returns every violation found.
func ValidateDefinition(def *Definition) []LoadError {
	var errs []LoadError

	if len(def.Lanes) == 0 && len(def.Clips) == 0 {
		errs = append(errs, LoadError{Code: ErrCodeEmpty, Message: "no lanes or clips defined"})
		return errs
	}

	seen := make(map[string]bool)
	for _, lane := range def.Lanes {
		if seen[lane.Target] {
			errs = append(errs, LoadError{
				Code: ErrCodeDupTarget, Owner: lane.Target,
				Message: "duplicate lane target",
			})
		}
		seen[lane.Target] = true
		errs = append(errs, validatePoints(lane.Target, lane.Points)...)
	}
	for _, clip := range def.Clips {
		errs = append(errs, validatePoints(clip.Name, clip.Points)...)
	}
	return errs
}

func validatePoints(owner string, pts []PointDef) []LoadError {
	var errs []LoadError
	for i, p := range pts {
		if _, err := parseType(p.Type); err != nil {
			errs = append(errs, LoadError{
				Code: ErrCodeBadType, Owner: owner, Index: i,
				Message: err.Error(),
			})
		}
		if !finite(p.Time) || !finite(p.Value) {
			errs = append(errs, LoadError{
				Code: ErrCodeBadValue, Owner: owner, Index: i,
				Message: "time and value must be finite",
			})
		}
		if p.Tension < -1 || p.Tension > 1 {
			errs = append(errs, LoadError{
				Code: ErrCodeTension, Owner: owner, Index: i,
				Message: fmt.Sprintf("tension %v outside [-1, 1]", p.Tension),
			})
		}
		// The incoming handle reaches backward in time, the outgoing one
		// forward. Offsets beyond the neighbor are clamped on build, but
		// a wrong sign is always a definition mistake.
		if p.In != nil && p.In.Time > 0 {
			errs = append(errs, LoadError{
				Code: ErrCodeHandle, Owner: owner, Index: i,
				Message: "in handle time offset must be <= 0",
			})
		}
		if p.Out != nil && p.Out.Time < 0 {
			errs = append(errs, LoadError{
				Code: ErrCodeHandle, Owner: owner, Index: i,
				Message: "out handle time offset must be >= 0",
			})
		}
	}
	return errs
}

// BuildStore materializes a validated definition into a store, returning
// the store and a name-to-owner index (lane targets and clip names).
func BuildStore(def *Definition) (*store.Store, map[string]store.OwnerID, error) {
	st := store.New()
	owners := make(map[string]store.OwnerID)

	for _, lane := range def.Lanes {
		id := st.CreateLane(lane.Target)
		if lane.Visible != nil && !*lane.Visible {
			if err := st.SetLaneVisible(id, false); err != nil {
				return nil, nil, err
			}
		}
		owners[lane.Target] = store.OwnerID(id)
		if err := buildPoints(st, store.OwnerID(id), lane.Points); err != nil {
			return nil, nil, fmt.Errorf("lane %s: %w", lane.Target, err)
		}
	}
	for _, clip := range def.Clips {
		id := st.CreateClip()
		owners[clip.Name] = store.OwnerID(id)
		if err := buildPoints(st, store.OwnerID(id), clip.Points); err != nil {
			return nil, nil, fmt.Errorf("clip %s: %w", clip.Name, err)
		}
	}
	return st, owners, nil
}

func buildPoints(st *store.Store, owner store.OwnerID, pts []PointDef) error {
	for _, p := range pts {
		typ, err := parseType(p.Type)
		if err != nil {
			return err
		}
		id, err := st.AddPoint(owner, p.Time, p.Value, typ)
		if err != nil {
			return err
		}
		if typ == curve.Linear && p.Tension != 0 {
			if err := st.SetTension(id, p.Tension); err != nil {
				return err
			}
		}
		if typ == curve.Bezier && (p.In != nil || p.Out != nil) {
			var in, out curve.Handle
			if p.In != nil {
				in = curve.Handle{TimeOffset: p.In.Time, ValueOffset: p.In.Value}
			}
			if p.Out != nil {
				out = curve.Handle{TimeOffset: p.Out.Time, ValueOffset: p.Out.Value}
			}
			if err := st.SetHandles(id, in, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseType(s string) (curve.Type, error) {
	switch s {
	case "", "linear":
		return curve.Linear, nil
	case "step":
		return curve.Step, nil
	case "bezier":
		return curve.Bezier, nil
	default:
		return 0, fmt.Errorf("unknown curve type %q (want step, linear, or bezier)", s)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
