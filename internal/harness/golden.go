package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and, when it carries a golden
// block, compares the final committed curve trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if scenario.Golden != nil {
		g := goldie.New(t,
			goldie.WithFixtureDir("testdata/golden"),
			goldie.WithNameSuffix(".golden"),
		)
		g.Assert(t, scenario.Name, renderTrace(scenario, result))
	}
	return result, nil
}

// renderTrace samples the final committed curve over the golden range.
// Sample times come from integer step counts so float accumulation
// cannot perturb the trace between runs, and values use a fixed %.6f so
// the file is stable across platforms.
func renderTrace(scenario *Scenario, r *Result) []byte {
	golden := scenario.Golden
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", scenario.Name)
	n := int((golden.To-golden.From)/golden.Step) + 1
	for i := 0; i < n; i++ {
		t := golden.From + float64(i)*golden.Step
		v := r.Store.EvaluateCommitted(r.Owner, t, 0)
		fmt.Fprintf(&buf, "%.3f %.6f\n", t, v)
	}
	return buf.Bytes()
}
