package harness

import (
	"fmt"

	"github.com/waveline/automation/internal/command"
	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/selection"
	"github.com/waveline/automation/internal/session"
	"github.com/waveline/automation/internal/store"
	"github.com/waveline/automation/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors lists the failed assertions. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Store, Owner, Stack, and Labels expose the final state for
	// callers that want to assert beyond the scenario's own clauses.
	Store  *store.Store
	Owner  store.OwnerID
	Stack  *command.Stack
	Labels map[string]store.PointID
}

// AddError records a failed assertion and marks the result failed.
func (r *Result) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario against a fresh store, command stack, and
// edit session, then checks its assertions. A returned error means the
// script itself could not run (unknown label, invalid step); assertion
// failures land in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	st := store.New(store.WithIDGenerator(testutil.NewSequence("pt")))
	stack := command.NewStack()
	lane := st.CreateLane(scenario.Lane)
	sess := session.New(st, stack, selection.New(), session.Target{Lane: lane})

	result := &Result{
		Pass:   true,
		Store:  st,
		Owner:  store.OwnerID(lane),
		Stack:  stack,
		Labels: make(map[string]store.PointID),
	}

	for i, step := range scenario.Steps {
		if err := runStep(result, sess, &step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	checkAssertions(scenario, result)
	return result, nil
}

func runStep(r *Result, sess *session.Session, step *Step) error {
	switch {
	case step.Add != nil:
		return runAdd(r, step.Add)
	case step.Move != nil:
		id, err := r.label(step.Move.Point)
		if err != nil {
			return err
		}
		return r.Stack.Apply(&command.MovePoint{
			Store: r.Store, ID: id, Time: step.Move.Time, Value: step.Move.Value,
		})
	case step.Delete != nil:
		ids := make([]store.PointID, 0, len(step.Delete.Points))
		for _, label := range step.Delete.Points {
			id, err := r.label(label)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return r.Stack.Apply(&command.DeletePoints{Store: r.Store, IDs: ids})
	case step.Tension != nil:
		id, err := r.label(step.Tension.Point)
		if err != nil {
			return err
		}
		return r.Stack.Apply(&command.SetTension{
			Store: r.Store, ID: id, Tension: step.Tension.Value,
		})
	case step.Handles != nil:
		id, err := r.label(step.Handles.Point)
		if err != nil {
			return err
		}
		return r.Stack.Apply(&command.SetHandles{
			Store: r.Store, ID: id,
			In:  curve.Handle{TimeOffset: step.Handles.In.Time, ValueOffset: step.Handles.In.Value},
			Out: curve.Handle{TimeOffset: step.Handles.Out.Time, ValueOffset: step.Handles.Out.Value},
		})
	case step.Draw != nil:
		return runDraw(sess, step.Draw)
	case step.Undo:
		if !r.Stack.Undo() {
			return fmt.Errorf("undo: history is empty")
		}
		return nil
	case step.Redo:
		if !r.Stack.Redo() {
			return fmt.Errorf("redo: nothing to redo")
		}
		return nil
	}
	return fmt.Errorf("empty step")
}

func runAdd(r *Result, add *AddStep) error {
	typ := curve.Linear
	switch add.Type {
	case "", "linear":
	case "step":
		typ = curve.Step
	case "bezier":
		typ = curve.Bezier
	default:
		return fmt.Errorf("add: unknown curve type %q", add.Type)
	}

	cmd := &command.AddPoint{
		Store: r.Store, Owner: r.Owner,
		Time: add.Time, Value: add.Value, Type: typ,
	}
	if err := r.Stack.Apply(cmd); err != nil {
		return err
	}
	if add.Label != "" {
		r.Labels[add.Label] = cmd.PointID()
	}
	return nil
}

func runDraw(sess *session.Session, draw *DrawStep) error {
	switch draw.Mode {
	case "pencil":
		sess.SetMode(session.ModePencil)
	case "line":
		sess.SetMode(session.ModeLine)
	case "curve":
		sess.SetMode(session.ModeCurve)
	default:
		return fmt.Errorf("draw: unknown mode %q", draw.Mode)
	}

	sess.PointerDown(session.Sample{Time: draw.Samples[0].Time, Value: draw.Samples[0].Value})
	for _, sm := range draw.Samples[1:] {
		sess.PointerDrag(session.Sample{Time: sm.Time, Value: sm.Value})
	}
	last := draw.Samples[len(draw.Samples)-1]
	sess.PointerUp(session.Sample{Time: last.Time, Value: last.Value})
	return nil
}

func (r *Result) label(name string) (store.PointID, error) {
	id, ok := r.Labels[name]
	if !ok {
		return "", fmt.Errorf("unknown point label %q", name)
	}
	return id, nil
}
