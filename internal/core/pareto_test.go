package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonDominatedSort(t *testing.T) {
	o := Objective{{Name: "f1"}, {Name: "f2"}}
	vectors := []ObjectiveVector{
		{1, 5}, // front 0
		{2, 2}, // front 0
		{3, 3}, // dominated by {2,2}
		{5, 1}, // front 0
		{4, 4}, // dominated by {2,2} and {3,3}
	}
	fronts := NonDominatedSort(o, vectors)
	assert.Equal(t, [][]int{{0, 1, 3}, {2}, {4}}, fronts)
	assert.Equal(t, []int{0, 0, 1, 0, 2}, Ranks(o, vectors))

	for _, i := range fronts[0] {
		for _, j := range fronts[0] {
			assert.False(t, o.Dominates(vectors[i], vectors[j]))
		}
	}
	assert.Nil(t, NonDominatedSort(o, nil))
}

func TestNonDominatedSort_Maximize(t *testing.T) {
	o := Objective{{Name: "f1", Direction: Maximize}, {Name: "f2", Direction: Maximize}}
	fronts := NonDominatedSort(o, []ObjectiveVector{{1, 1}, {2, 2}})
	assert.Equal(t, [][]int{{1}, {0}}, fronts)
}

func TestCrowdingDistance(t *testing.T) {
	vectors := []ObjectiveVector{{0, 4}, {1, 3}, {3, 1}, {4, 0}}
	d := CrowdingDistance(vectors, []int{0, 1, 2, 3})

	assert.True(t, math.IsInf(d[0], 1))
	assert.True(t, math.IsInf(d[3], 1))
	assert.InDelta(t, 1.5, d[1], 1e-12)
	assert.InDelta(t, 1.5, d[2], 1e-12)

	small := CrowdingDistance(vectors, []int{1, 2})
	assert.True(t, math.IsInf(small[0], 1))
	assert.True(t, math.IsInf(small[1], 1))
}
