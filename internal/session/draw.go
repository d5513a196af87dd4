package session

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/waveline/automation/internal/command"
	"github.com/waveline/automation/internal/curve"
)

// simplify runs the greedy distance filter over a captured path: walk
// the samples in order and keep one whenever its scaled distance from
// the last kept sample reaches the threshold. The final sample is
// always kept so the stroke ends where the pointer lifted.
func (s *Session) simplify(path []Sample) []Sample {
	if len(path) <= 2 {
		out := make([]Sample, len(path))
		copy(out, path)
		return out
	}

	kept := make([]Sample, 0, len(path)/4+2)
	kept = append(kept, path[0])
	last := path[0]
	for _, sm := range path[1 : len(path)-1] {
		if s.dist(last, sm) >= s.threshold {
			kept = append(kept, sm)
			last = sm
		}
	}
	end := path[len(path)-1]
	if s.dist(last, end) > 0 || len(kept) == 1 {
		kept = append(kept, end)
	}
	return kept
}

// dist is the Euclidean distance between two samples after scaling time
// and value into the editor's unit space.
func (s *Session) dist(a, b Sample) float64 {
	dt := (b.Time - a.Time) * s.timeScale
	dv := (b.Value - a.Value) * s.valueScale
	return math.Hypot(dt, dv)
}

// commitStroke simplifies the captured path and commits it as one
// compound of AddPoint commands. Strokes that reduce to fewer than two
// points commit nothing.
func (s *Session) commitStroke(typ curve.Type) {
	kept := s.simplify(s.path)
	if len(kept) < 2 {
		return
	}

	cmds := make([]command.Command, 0, len(kept))
	seen := make(map[float64]bool, len(kept))
	for _, sm := range kept {
		t := s.storeTime(sm.Time)
		// Snapping can collapse neighbors onto the same grid line; the
		// later sample wins, matching the in-place replace an AddPoint
		// at that time would perform anyway.
		if seen[t] {
			continue
		}
		seen[t] = true
		cmds = append(cmds, &command.AddPoint{
			Store: s.store,
			Owner: s.target.Owner(),
			Time:  t,
			Value: sm.Value,
			Type:  typ,
		})
	}
	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].(*command.AddPoint).Time < cmds[j].(*command.AddPoint).Time
	})

	group := &command.Compound{
		Desc:     fmt.Sprintf("Draw %d Automation Points", len(cmds)),
		Commands: cmds,
	}
	if err := s.sink.Apply(group); err != nil {
		slog.Warn("stroke commit failed", "owner", s.target.Owner(), "mode", s.mode, "error", err)
		return
	}
	slog.Debug("stroke committed", "owner", s.target.Owner(), "raw", len(s.path), "kept", len(cmds))
}

// commitLine commits the line gesture as two Linear points in one undo
// step. A zero-length line (in time) commits a single point.
func (s *Session) commitLine(from, to Sample) {
	t0 := s.storeTime(from.Time)
	t1 := s.storeTime(to.Time)

	if t0 == t1 {
		s.applyLine([]command.Command{&command.AddPoint{
			Store: s.store, Owner: s.target.Owner(), Time: t0, Value: to.Value, Type: curve.Linear,
		}})
		return
	}
	if t0 > t1 {
		t0, t1 = t1, t0
		from, to = to, from
	}
	s.applyLine([]command.Command{
		&command.AddPoint{Store: s.store, Owner: s.target.Owner(), Time: t0, Value: from.Value, Type: curve.Linear},
		&command.AddPoint{Store: s.store, Owner: s.target.Owner(), Time: t1, Value: to.Value, Type: curve.Linear},
	})
}

func (s *Session) applyLine(cmds []command.Command) {
	group := &command.Compound{Desc: "Draw Automation Line", Commands: cmds}
	if err := s.sink.Apply(group); err != nil {
		slog.Warn("line commit failed", "owner", s.target.Owner(), "error", err)
	}
}
