package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/automation/internal/curve"
)

func TestLoadDefinition_ParsesFullShape(t *testing.T) {
	path := writeDefinition(t, `
lanes:
  - target: cutoff
    visible: false
    points:
      - {time: 0, value: 0.2, type: linear, tension: 0.5}
      - {time: 2, value: 0.5, type: bezier, out: {time: 0.5, value: 0.1}}
      - {time: 4, value: 0.8, type: step}
clips:
  - name: intro
    points:
      - {time: 1, value: 0.9}
`)

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	require.Len(t, def.Lanes, 1)
	require.Len(t, def.Clips, 1)
	assert.Equal(t, "cutoff", def.Lanes[0].Target)
	require.NotNil(t, def.Lanes[0].Visible)
	assert.False(t, *def.Lanes[0].Visible)
	require.Len(t, def.Lanes[0].Points, 3)
	assert.Equal(t, 0.5, def.Lanes[0].Points[0].Tension)
	require.NotNil(t, def.Lanes[0].Points[1].Out)
	assert.Equal(t, 0.5, def.Lanes[0].Points[1].Out.Time)
}

func TestLoadDefinition_MissingFile(t *testing.T) {
	_, err := LoadDefinition("/nonexistent/lanes.yaml")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeRead, loadErr.Code)
}

func TestLoadDefinition_MalformedYAML(t *testing.T) {
	path := writeDefinition(t, "lanes: [\n")
	_, err := LoadDefinition(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParse, loadErr.Code)
}

func TestValidateDefinition_CollectsEveryViolation(t *testing.T) {
	def := &Definition{
		Lanes: []LaneDef{
			{Target: "a", Points: []PointDef{
				{Time: 0, Value: 0.5, Type: "spline"},
				{Time: 1, Value: 0.5, Tension: 2},
				{Time: 2, Value: 0.5, Type: "bezier", In: &HandleDef{Time: 0.5}},
			}},
			{Target: "a"},
		},
	}

	errs := ValidateDefinition(def)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, ErrCodeBadType)
	assert.Contains(t, codes, ErrCodeTension)
	assert.Contains(t, codes, ErrCodeHandle)
	assert.Contains(t, codes, ErrCodeDupTarget)
	assert.Len(t, errs, 4, "one error per violation, all collected in one pass")
}

func TestValidateDefinition_EmptyDefinition(t *testing.T) {
	errs := ValidateDefinition(&Definition{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeEmpty, errs[0].Code)
}

func TestBuildStore_MaterializesPoints(t *testing.T) {
	def := &Definition{
		Lanes: []LaneDef{{
			Target: "volume",
			Points: []PointDef{
				{Time: 4, Value: 0.8},
				{Time: 0, Value: 0.2, Tension: -0.5},
			},
		}},
	}

	st, owners, err := BuildStore(def)
	require.NoError(t, err)
	owner, ok := owners["volume"]
	require.True(t, ok)

	pts, _ := st.Points(owner)
	require.Len(t, pts, 2)
	assert.Equal(t, 0.0, pts[0].Time, "points are sorted regardless of file order")
	assert.Equal(t, -0.5, pts[0].Tension)
	assert.Equal(t, curve.Linear, pts[1].Type)
}

func TestBuildStore_AppliesBezierHandles(t *testing.T) {
	def := &Definition{
		Lanes: []LaneDef{{
			Target: "pan",
			Points: []PointDef{
				{Time: 0, Value: 0.2, Type: "bezier", Out: &HandleDef{Time: 1, Value: 0.1}},
				{Time: 4, Value: 0.8, Type: "bezier", In: &HandleDef{Time: -1, Value: -0.1}},
			},
		}},
	}

	st, owners, err := BuildStore(def)
	require.NoError(t, err)
	pts, _ := st.Points(owners["pan"])
	require.Len(t, pts, 2)
	assert.Equal(t, 1.0, pts[0].Out.TimeOffset)
	assert.Equal(t, -1.0, pts[1].In.TimeOffset)
}
