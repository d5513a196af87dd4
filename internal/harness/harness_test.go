package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/automation/internal/curve"
)

// TestScenarios runs every scenario under testdata/scenarios, including
// golden trace comparison for the ones that carry a golden block.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenarios found")

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "failed assertions: %v", result.Errors)
		})
	}
}

func TestRun_FailedAssertionIsReportedNotFatal(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong-expectation", Description: "x", Lane: "volume",
		Steps: []Step{
			{Add: &AddStep{Label: "a", Time: 0, Value: 0.2}},
		},
		Assertions: []Assertion{
			{Type: AssertValueAt, Time: 0, Expect: 0.9},
			{Type: AssertPointCount, Count: 5},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err, "assertion failures are results, not errors")
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2, "every failed assertion is collected")
}

func TestRun_UnknownLabelIsScriptError(t *testing.T) {
	scenario := &Scenario{
		Name: "bad-label", Description: "x", Lane: "volume",
		Steps: []Step{
			{Move: &MoveStep{Point: "ghost", Time: 1, Value: 0.5}},
		},
		Assertions: []Assertion{{Type: AssertPointCount, Count: 0}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRun_UndoOnEmptyHistoryIsScriptError(t *testing.T) {
	scenario := &Scenario{
		Name: "premature-undo", Description: "x", Lane: "volume",
		Steps:      []Step{{Undo: true}},
		Assertions: []Assertion{{Type: AssertPointCount, Count: 0}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestRun_HandlesStepClampsThroughStore(t *testing.T) {
	scenario := &Scenario{
		Name: "handle-clamp", Description: "x", Lane: "volume",
		Steps: []Step{
			{Add: &AddStep{Label: "a", Time: 0, Value: 0.2, Type: "bezier"}},
			{Add: &AddStep{Label: "b", Time: 1, Value: 0.8, Type: "bezier"}},
			{Handles: &HandlesStep{Point: "a", Out: HandleSpec{Time: 5, Value: 0.1}}},
		},
		Assertions: []Assertion{{Type: AssertPointCount, Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass)

	p, ok := result.Store.Point(result.Labels["a"])
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Out.TimeOffset, "an over-long handle is clamped to the segment")
	assert.Equal(t, curve.Bezier, p.Type)
}

func TestRun_DrawStepGoesThroughSession(t *testing.T) {
	scenario := &Scenario{
		Name: "line-draw", Description: "x", Lane: "volume",
		Steps: []Step{
			{Draw: &DrawStep{Mode: "line", Samples: []SampleSpec{
				{Time: 0, Value: 0.1}, {Time: 2, Value: 0.9},
			}}},
		},
		Assertions: []Assertion{
			{Type: AssertPointCount, Count: 2},
			{Type: AssertUndoDepth, Count: 1},
			{Type: AssertValueAt, Time: 1, Expect: 0.5},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failed assertions: %v", result.Errors)
}
