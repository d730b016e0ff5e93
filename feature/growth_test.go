package feature

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthString(t *testing.T) {
	feat := NewGrowth("linear")
	expected := "growth_linear"
	assert.Equal(t, expected, feat.String())
}

func TestGrowthGet(t *testing.T) {
	feat := NewGrowth("linear")

	testData := map[string]struct {
		label     string
		expVal    string
		expExists bool
	}{
		"unknown": {
			label: "unknown",
		},
		"capitalized": {
			label:     "NAME",
			expVal:    "linear",
			expExists: true,
		},
		"exact match": {
			label:     "name",
			expVal:    "linear",
			expExists: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			val, exists := feat.Get(td.label)
			assert.Equal(t, td.expExists, exists, "exists")
			assert.Equal(t, td.expVal, val, "value")
		})
	}
}

func TestGrowthDecode(t *testing.T) {
	feat := NewGrowth("quadratic")
	exp := map[string]string{
		"name": "quadratic",
	}
	assert.Equal(t, exp, feat.Decode())
}

func TestGrowthUnmarshalJSON(t *testing.T) {
	feat := Linear()
	out, err := json.Marshal(feat.Decode())
	require.NoError(t, err)

	var nextFeat Growth
	require.NoError(t, json.Unmarshal(out, &nextFeat))

	assert.Equal(t, feat, &nextFeat)
}

func TestGrowthGenerate(t *testing.T) {
	trainStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	trainEnd := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		t          []time.Time
		trainStart time.Time
		trainEnd   time.Time
		expected   []float64
	}{
		"empty": {
			t:          []time.Time{},
			trainStart: trainStart,
			trainEnd:   trainEnd,
			expected:   []float64{},
		},
		"training range": {
			t: []time.Time{
				trainStart,
				trainStart.Add(24 * time.Hour),
				trainStart.Add(48 * time.Hour),
				trainEnd,
			},
			trainStart: trainStart,
			trainEnd:   trainEnd,
			expected:   []float64{0, 0.25, 0.5, 1},
		},
		"extrapolate": {
			t: []time.Time{
				trainStart.Add(-24 * time.Hour),
				trainEnd.Add(48 * time.Hour),
			},
			trainStart: trainStart,
			trainEnd:   trainEnd,
			expected:   []float64{-0.25, 1.5},
		},
		"zero training duration": {
			t:          []time.Time{trainStart, trainEnd},
			trainStart: trainStart,
			trainEnd:   trainStart,
			expected:   []float64{0, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := Linear().Generate(td.t, td.trainStart, td.trainEnd)
			require.Len(t, res, len(td.expected))
			for i, expected := range td.expected {
				assert.InDelta(t, expected, res[i], 1e-9, "value at index %d", i)
			}
		})
	}
}
