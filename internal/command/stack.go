package command

import "log/slog"

// DefaultMaxDepth is the default number of undo steps kept before the
// oldest are discarded.
const DefaultMaxDepth = 100

// StackListener is notified whenever undo/redo availability changes.
// UIs use this to refresh menu items and buttons.
type StackListener interface {
	UndoStateChanged()
}

// Stack is the reference Sink: an undo/redo stack with compound grouping
// and bounded depth.
//
// Threading: Stack lives on the edit thread with the store; it takes no
// locks and is not safe for concurrent use.
type Stack struct {
	undo     []Command
	redo     []Command
	maxDepth int

	// Open compound scopes nest; commands applied while a scope is open
	// collect into the outermost group.
	compound      *Compound
	compoundDepth int

	listeners []StackListener
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithMaxDepth overrides the undo depth limit.
func WithMaxDepth(n int) StackOption {
	return func(s *Stack) {
		s.maxDepth = n
	}
}

// NewStack creates an empty undo stack.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply executes the command and records it as one undo step. While a
// compound scope is open the command joins the group instead and the
// group becomes the undo step when the outermost scope closes. A failed
// Execute records nothing.
func (s *Stack) Apply(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	if s.compound != nil {
		s.compound.Commands = append(s.compound.Commands, cmd)
		return nil
	}
	s.push(cmd)
	return nil
}

// BeginCompound opens a compound scope. Scopes nest; only the outermost
// description is kept.
func (s *Stack) BeginCompound(description string) {
	if s.compoundDepth == 0 {
		s.compound = &Compound{Desc: description}
	}
	s.compoundDepth++
}

// EndCompound closes a compound scope. Closing the outermost scope
// records the collected group as a single undo step; an empty group
// records nothing.
func (s *Stack) EndCompound() {
	if s.compoundDepth == 0 {
		return
	}
	s.compoundDepth--
	if s.compoundDepth > 0 {
		return
	}
	group := s.compound
	s.compound = nil
	if len(group.Commands) == 0 {
		return
	}
	// The members already executed inside Apply; record without
	// re-executing.
	s.push(group)
}

// InCompound reports whether a compound scope is open.
func (s *Stack) InCompound() bool { return s.compoundDepth > 0 }

// Undo reverses the most recent undo step. Returns false when there is
// nothing to undo.
func (s *Stack) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	if err := cmd.Undo(); err != nil {
		slog.Error("undo failed", "command", cmd.Description(), "error", err)
	}
	s.redo = append(s.redo, cmd)
	s.notify()
	return true
}

// Redo re-applies the most recently undone step. Returns false when
// there is nothing to redo.
func (s *Stack) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	if err := cmd.Execute(); err != nil {
		slog.Error("redo failed", "command", cmd.Description(), "error", err)
	}
	s.undo = append(s.undo, cmd)
	s.notify()
	return true
}

// CanUndo reports whether an undo step is available.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// UndoDescription returns the description of the step Undo would revert.
func (s *Stack) UndoDescription() string {
	if len(s.undo) == 0 {
		return ""
	}
	return s.undo[len(s.undo)-1].Description()
}

// RedoDescription returns the description of the step Redo would replay.
func (s *Stack) RedoDescription() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Description()
}

// Depth returns the number of recorded undo steps.
func (s *Stack) Depth() int { return len(s.undo) }

// Clear drops all undo/redo history.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
	s.notify()
}

// AddListener registers a state-change listener.
func (s *Stack) AddListener(l StackListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Stack) push(cmd Command) {
	s.undo = append(s.undo, cmd)
	// A new edit invalidates the redo branch.
	s.redo = nil
	if len(s.undo) > s.maxDepth {
		over := len(s.undo) - s.maxDepth
		s.undo = append([]Command(nil), s.undo[over:]...)
	}
	slog.Debug("command recorded", "command", cmd.Description(), "depth", len(s.undo))
	s.notify()
}

func (s *Stack) notify() {
	for _, l := range s.listeners {
		l.UndoStateChanged()
	}
}
