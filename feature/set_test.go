package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSetSet(t *testing.T) {
	testData := map[string]struct {
		init     *Set
		f        Feature
		data     []float64
		expected *Set
	}{
		"initial set": {
			init: NewSet(),
			f:    NewEvent("blargh", 0),
			data: []float64{1, 2, 3, 4},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh", 0)},
			},
		},
		"set with more data": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh", 0)},
			},
			f:    NewEvent("more", 0),
			data: []float64{1, 2, 3, 4, 5, 6},
			expected: &Set{
				m: 6,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4, 0, 0},
					"event_more_+0":   {1, 2, 3, 4, 5, 6},
				},
				labels: []Feature{
					NewEvent("blargh", 0),
					NewEvent("more", 0),
				},
			},
		},
		"set with less data": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh", 0)},
			},
			f:    NewEvent("less", 0),
			data: []float64{1, 2},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4},
					"event_less_+0":   {1, 2, 0, 0},
				},
				labels: []Feature{
					NewEvent("blargh", 0),
					NewEvent("less", 0),
				},
			},
		},
		"sorted insert": {
			init: &Set{
				m: 2,
				set: map[string][]float64{
					"event_b_+0": {1, 2},
				},
				labels: []Feature{NewEvent("b", 0)},
			},
			f:    NewEvent("a", 0),
			data: []float64{3, 4},
			expected: &Set{
				m: 2,
				set: map[string][]float64{
					"event_a_+0": {3, 4},
					"event_b_+0": {1, 2},
				},
				labels: []Feature{
					NewEvent("a", 0),
					NewEvent("b", 0),
				},
			},
		},
		"override": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh", 0)},
			},
			f:    NewEvent("blargh", 0),
			data: []float64{5, 6, 7, 8},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh_+0": {5, 6, 7, 8},
				},
				labels: []Feature{
					NewEvent("blargh", 0),
				},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.init.Set(td.f, td.data)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSetGetDel(t *testing.T) {
	s := NewSet().
		Set(NewEvent("a", 0), []float64{1, 0}).
		Set(NewEvent("b", -1), []float64{0, 1})

	data, exists := s.Get(NewEvent("b", -1))
	require.True(t, exists)
	assert.Equal(t, []float64{0, 1}, data)

	_, exists = s.Get(NewEvent("c", 0))
	assert.False(t, exists)

	s.Del(NewEvent("a", 0))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, []Feature{NewEvent("b", -1)}, s.Labels().Labels())

	// deleting an unknown feature is a no-op
	s.Del(NewEvent("a", 0))
	assert.Equal(t, 1, s.Len())

	var nilSet *Set
	assert.Equal(t, 0, nilSet.Len())
	_, exists = nilSet.Get(NewEvent("a", 0))
	assert.False(t, exists)
}

func TestSetUpdate(t *testing.T) {
	s := NewSet().Set(NewEvent("a", 0), []float64{1, 0})
	other := NewSet().
		Set(NewEvent("a", 0), []float64{0, 1}).
		Set(NewGrowth(GrowthLinear), []float64{0, 1})

	s.Update(other)

	expected := &Set{
		m: 2,
		set: map[string][]float64{
			"event_a_+0":    {0, 1},
			"growth_linear": {0, 1},
		},
		labels: []Feature{NewEvent("a", 0), NewGrowth(GrowthLinear)},
	}
	assert.Equal(t, expected, s)
	assert.Equal(t, expected, s.Update(nil))
}

func TestSetRemoveZeroOnlyFeatures(t *testing.T) {
	s := NewSet().
		Set(NewEvent("a", 0), []float64{0, 0, 0}).
		Set(NewEvent("b", 0), []float64{0, 1, 0}).
		Set(NewEvent("c", 1), []float64{0, 0, 0})

	s.RemoveZeroOnlyFeatures()
	assert.Equal(t, []Feature{NewEvent("b", 0)}, s.Labels().Labels())
}

func TestSetMatrix(t *testing.T) {
	testData := map[string]struct {
		set       *Set
		intercept bool
		expected  *mat.Dense
	}{
		"empty": {
			set:       NewSet(),
			intercept: true,
		},
		"no intercept": {
			set: NewSet().
				Set(NewEvent("a", 0), []float64{1, 0, 1}).
				Set(NewEvent("b", 0), []float64{0, 1, 0}),
			expected: mat.NewDense(3, 2, []float64{
				1, 0,
				0, 1,
				1, 0,
			}),
		},
		"with intercept": {
			set: NewSet().
				Set(NewEvent("b", 0), []float64{0, 1, 0}).
				Set(NewEvent("a", 0), []float64{1, 0, 1}),
			intercept: true,
			expected: mat.NewDense(3, 3, []float64{
				1, 1, 0,
				1, 0, 1,
				1, 1, 0,
			}),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.set.Matrix(td.intercept)
			if td.expected == nil {
				assert.Nil(t, res)
				return
			}
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSetMatrixSlice(t *testing.T) {
	s := NewSet().
		Set(NewEvent("b", 0), []float64{0, 1}).
		Set(NewEvent("a", 0), []float64{1, 0})

	assert.Equal(t, [][]float64{{1, 1}, {1, 0}, {0, 1}}, s.MatrixSlice(true))
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, s.MatrixSlice(false))
	assert.Nil(t, NewSet().MatrixSlice(true))
}

func TestLabels(t *testing.T) {
	labels := NewLabels([]Feature{
		NewEvent("a", 0),
		NewGrowth(GrowthLinear),
		NewEvent("a", 1),
	})

	idx, exists := labels.Index(NewEvent("a", 1))
	require.True(t, exists)
	assert.Equal(t, 2, idx)

	_, exists = labels.Index(NewEvent("b", 0))
	assert.False(t, exists)

	assert.Equal(t, []int{0, 2}, labels.OfType(FeatureTypeEvent))
	assert.Equal(t, []int{1}, labels.OfType(FeatureTypeGrowth))
	assert.Nil(t, labels.OfType(FeatureTypeSeasonality))

	var nilLabels *Labels
	assert.Equal(t, 0, nilLabels.Len())
	assert.Nil(t, nilLabels.OfType(FeatureTypeEvent))
}
