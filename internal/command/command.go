// Package command provides the undoable-edit contract for automation
// mutations and a reference undo stack.
//
// Every committed store mutation is wrapped in exactly one Command (or
// one Compound group) and applied through a Sink. The engine core only
// depends on the Sink interface; hosts that already have an application
// undo system can adapt it instead of using Stack.
package command

import (
	"fmt"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
)

// Command is one reversible edit. Execute performs the mutation, Undo
// reverses it; both must be safe to call repeatedly in alternation
// (redo re-runs Execute). Commands capture all state they need for undo
// at execution time.
type Command interface {
	Execute() error
	Undo() error
	Description() string
}

// Sink accepts commands for execution. Applying a command executes it
// immediately; a failed Execute must leave no history entry.
type Sink interface {
	Apply(cmd Command) error
}

// savedHandle is one Bezier point's handle offsets captured before a
// duration-changing mutation. The store re-clamps handles across the
// whole disturbed neighborhood, not just on the mutated point, so
// commands that change segment durations capture every Bezier point's
// offsets and restore them on undo.
type savedHandle struct {
	id  store.PointID
	in  curve.Handle
	out curve.Handle
}

func captureHandles(st *store.Store, owner store.OwnerID) []savedHandle {
	pts, ok := st.Points(owner)
	if !ok {
		return nil
	}
	var saved []savedHandle
	for _, p := range pts {
		if p.Type == curve.Bezier {
			saved = append(saved, savedHandle{id: store.PointID(p.ID), in: p.In, out: p.Out})
		}
	}
	return saved
}

// restoreHandles reapplies captured offsets after the primary mutation
// has been reversed. The geometry is back to its pre-mutation shape at
// that point, so the store's clamping accepts every captured offset
// unchanged. Clamping only ever shrinks offsets toward zero, and smaller
// offsets loosen the constraint on the adjacent point, so the restore
// order does not matter.
func restoreHandles(st *store.Store, saved []savedHandle) error {
	for _, h := range saved {
		if _, ok := st.Point(h.id); !ok {
			continue
		}
		if err := st.SetHandles(h.id, h.in, h.out); err != nil {
			return err
		}
	}
	return nil
}

// AddPoint inserts a point. If the add lands on an existing point's
// exact time the store replaces it in place; the command captures the
// replaced state so undo can restore it. Handle offsets across the
// owner's Bezier points are captured too, because inserting a point
// splits a segment and can clamp its neighbors.
type AddPoint struct {
	Store *store.Store
	Owner store.OwnerID
	Time  float64
	Value float64
	Type  curve.Type

	id       store.PointID
	replaced *curve.Point
	handles  []savedHandle
}

// Execute implements Command.
func (c *AddPoint) Execute() error {
	c.handles = captureHandles(c.Store, c.Owner)
	if prev, ok := c.Store.PointAt(c.Owner, c.Time); ok {
		cp := prev
		c.replaced = &cp
	} else {
		c.replaced = nil
	}
	if c.id != "" && c.replaced == nil {
		// Redo after an undo: re-insert under the original identity so
		// commands recorded later keep referring to a live point.
		return c.Store.InsertPoint(c.Owner, curve.Point{
			ID: string(c.id), Time: c.Time, Value: c.Value, Type: c.Type,
		})
	}
	id, err := c.Store.AddPoint(c.Owner, c.Time, c.Value, c.Type)
	if err != nil {
		return err
	}
	c.id = id
	return nil
}

// Undo implements Command.
func (c *AddPoint) Undo() error {
	if c.replaced != nil {
		// The add replaced an existing point in place; restore its
		// previous value and type.
		c.Store.DeletePoint(c.id)
		if err := c.Store.InsertPoint(c.Owner, *c.replaced); err != nil {
			return err
		}
		return restoreHandles(c.Store, c.handles)
	}
	c.Store.DeletePoint(c.id)
	return restoreHandles(c.Store, c.handles)
}

// Description implements Command.
func (c *AddPoint) Description() string { return "Add Automation Point" }

// PointID returns the ID of the point created (or replaced) by Execute.
func (c *AddPoint) PointID() store.PointID { return c.id }

// MovePoint repositions a point by stable ID. Moving changes the
// durations of the segments on either side, which can clamp Bezier
// handles on the moved point and its neighbors, so the command captures
// the owner's handle offsets alongside the previous position.
type MovePoint struct {
	Store *store.Store
	ID    store.PointID
	Time  float64
	Value float64

	prevTime  float64
	prevValue float64
	handles   []savedHandle
}

// Execute implements Command.
func (c *MovePoint) Execute() error {
	p, ok := c.Store.Point(c.ID)
	if !ok {
		return c.Store.MovePoint(c.ID, c.Time, c.Value) // surfaces PointNotFound
	}
	owner, _ := c.Store.OwnerOf(c.ID)
	c.handles = captureHandles(c.Store, owner)
	c.prevTime, c.prevValue = p.Time, p.Value
	return c.Store.MovePoint(c.ID, c.Time, c.Value)
}

// Undo implements Command.
func (c *MovePoint) Undo() error {
	if err := c.Store.MovePoint(c.ID, c.prevTime, c.prevValue); err != nil {
		return err
	}
	return restoreHandles(c.Store, c.handles)
}

// Description implements Command.
func (c *MovePoint) Description() string { return "Move Automation Point" }

// DeletePoints removes a batch of points by stable ID as one undo step.
// Undo restores every removed point with its full shape (time, value,
// type, tension, handles).
type DeletePoints struct {
	Store *store.Store
	IDs   []store.PointID

	removed []store.Removed
}

// Execute implements Command.
func (c *DeletePoints) Execute() error {
	c.removed = c.Store.DeletePoints(c.IDs)
	return nil
}

// Undo implements Command.
func (c *DeletePoints) Undo() error {
	for _, r := range c.removed {
		if err := c.Store.InsertPoint(r.Owner, r.Point); err != nil {
			return err
		}
	}
	return nil
}

// Description implements Command.
func (c *DeletePoints) Description() string {
	if len(c.IDs) == 1 {
		return "Delete Automation Point"
	}
	return fmt.Sprintf("Delete %d Automation Points", len(c.IDs))
}

// SetHandles updates a Bezier point's control handles. The store may
// clamp the requested offsets; undo restores the exact previous handles.
type SetHandles struct {
	Store *store.Store
	ID    store.PointID
	In    curve.Handle
	Out   curve.Handle

	prevIn  curve.Handle
	prevOut curve.Handle
}

// Execute implements Command.
func (c *SetHandles) Execute() error {
	p, ok := c.Store.Point(c.ID)
	if ok {
		c.prevIn, c.prevOut = p.In, p.Out
	}
	return c.Store.SetHandles(c.ID, c.In, c.Out)
}

// Undo implements Command.
func (c *SetHandles) Undo() error {
	return c.Store.SetHandles(c.ID, c.prevIn, c.prevOut)
}

// Description implements Command.
func (c *SetHandles) Description() string { return "Adjust Curve Handles" }

// SetTension updates a Linear point's tension.
type SetTension struct {
	Store   *store.Store
	ID      store.PointID
	Tension float64

	prev float64
}

// Execute implements Command.
func (c *SetTension) Execute() error {
	p, ok := c.Store.Point(c.ID)
	if ok {
		c.prev = p.Tension
	}
	return c.Store.SetTension(c.ID, c.Tension)
}

// Undo implements Command.
func (c *SetTension) Undo() error {
	return c.Store.SetTension(c.ID, c.prev)
}

// Description implements Command.
func (c *SetTension) Description() string { return "Adjust Curve Tension" }

// Compound groups primitive edits into one undo step. Execute runs the
// commands in order; Undo reverses them back to front.
type Compound struct {
	Desc     string
	Commands []Command
}

// Execute implements Command.
func (c *Compound) Execute() error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil {
			// Roll back the part that already ran so a failed compound
			// leaves no half-applied edit behind.
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo()
			}
			return fmt.Errorf("compound %q step %d: %w", c.Desc, i, err)
		}
	}
	return nil
}

// Undo implements Command.
func (c *Compound) Undo() error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(); err != nil {
			return fmt.Errorf("compound %q undo step %d: %w", c.Desc, i, err)
		}
	}
	return nil
}

// Description implements Command.
func (c *Compound) Description() string { return c.Desc }
