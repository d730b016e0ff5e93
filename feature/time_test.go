package feature

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString(t *testing.T) {
	feat := NewTime("blargh")
	expected := "tfeat_blargh"
	assert.Equal(t, expected, feat.String())
}

func TestTimeGet(t *testing.T) {
	feat := NewTime("blargh")

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
			expVal:    "blargh",
			expExists: true,
		},
		"exact match": {
			label:     "name",
			expVal:    "blargh",
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

func TestTimeDecode(t *testing.T) {
	feat := NewTime("blargh")
	exp := map[string]string{
		"name": "blargh",
	}
	assert.Equal(t, exp, feat.Decode())
}

func TestTimeUnmarshalJSON(t *testing.T) {
	feat := NewTime("blargh")
	out, err := json.Marshal(feat.Decode())
	require.NoError(t, err)

	var nextFeat Time
	require.NoError(t, json.Unmarshal(out, &nextFeat))

	assert.Equal(t, feat, &nextFeat)
}

func TestTimeGenerate(t *testing.T) {
	testData := map[string]struct {
		times     []time.Time
		expected  []float64
		tolerance float64
	}{
		"empty": {
			times:    []time.Time{},
			expected: []float64{},
		},
		"unix epoch conversion": {
			times: []time.Time{
				time.Unix(0, 0),
				time.Unix(86400, 0),
				time.Unix(1672531200, 0),
			},
			expected:  []float64{0.0, 86400.0, 1672531200.0},
			tolerance: 1e-6,
		},
		"nanosecond precision": {
			times: []time.Time{
				time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2023, 1, 1, 0, 0, 0, 500000000, time.UTC),
				time.Date(2023, 1, 1, 0, 0, 1, 0, time.UTC),
			},
			expected:  []float64{1672531200.0, 1672531200.5, 1672531201.0},
			tolerance: 1e-6,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := NewTime("epoch").Generate(td.times)
			require.Len(t, res, len(td.expected))
			for i, expected := range td.expected {
				assert.InDelta(t, expected, res[i], td.tolerance, "value at index %d", i)
			}
		})
	}
}
