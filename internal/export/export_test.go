package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
)

func history() []operators.Snapshot {
	return []operators.Snapshot{
		{Iteration: 0, Best: core.ObjectiveVector{4}, Size: 4},
		{Iteration: 1, Best: core.ObjectiveVector{2}, Size: 4},
		{Iteration: 2, Size: 4},
		{Iteration: 3, Best: core.ObjectiveVector{1}, Size: 4},
	}
}

func frontResult() *experiment.Result {
	return &experiment.Result{
		Problem:   "zdt1",
		Algorithm: "genetic",
		Goals:     []experiment.Goal{{Name: "f1", Direction: "minimize"}, {Name: "f2", Direction: "minimize"}},
		History:   history(),
		Final: []experiment.Member{
			{Genotype: "[0]", Objectives: core.ObjectiveVector{0, 1}, Rank: 0},
			{Genotype: "[1]", Objectives: core.ObjectiveVector{1, 0}, Rank: 0},
			{Genotype: "[2]", Objectives: core.ObjectiveVector{1, 1}, Rank: 1},
		},
		Reference: []core.ObjectiveVector{{0, 1}, {1, 0}},
	}
}

func TestPathToSVG(t *testing.T) {
	assert.Empty(t, PathToSVG([]Point{{0, 0}}, 100, 50, "#fff"))

	svg := PathToSVG([]Point{{0, 0}, {1, 1}}, 100, 50, "#fff")
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `stroke="#fff"`)
	// 10% padding maps (0,0) to (100/12, 50-50/12).
	assert.Contains(t, svg, "M8.3,45.8 L91.7,4.2")
}

func TestConvergenceSVG(t *testing.T) {
	points := ConvergencePoints(history(), 0)
	assert.Equal(t, []Point{{0, 4}, {1, 2}, {3, 1}}, points)

	svg, err := ConvergenceSVG(history(), 0, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(svg, " L"))

	_, err = ConvergenceSVG(history(), 1, 200, 100)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestFrontHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FrontHTML(&buf, frontResult()))
	html := buf.String()
	assert.Contains(t, html, "Reference front")
	assert.Contains(t, html, "genetic front")

	single := frontResult()
	single.Goals = single.Goals[:1]
	assert.ErrorIs(t, FrontHTML(&buf, single), core.ErrInvalidArgument)

	empty := frontResult()
	empty.Final = nil
	assert.ErrorIs(t, FrontHTML(&buf, empty), core.ErrInvalidArgument)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, frontResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "zdt1", decoded["problem"])
	assert.Len(t, decoded["history"], 4)
	assert.Len(t, decoded["final"], 3)
	assert.Len(t, decoded["reference"], 2)
}
