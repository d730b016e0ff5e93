package forecaster

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-neuralforecaster/forecast"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineValues(data []opts.LineData) []interface{} {
	res := make([]interface{}, 0, len(data))
	for _, d := range data {
		res = append(res, d.Value)
	}
	return res
}

func TestLineTSeries(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := timedataset.GenerateDailyT(start, 3)

	testData := map[string]struct {
		names    []string
		y        [][]float64
		expected [][]interface{}
	}{
		"single series": {
			names:    []string{"a"},
			y:        [][]float64{{1, 2, 3}},
			expected: [][]interface{}{{1.0, 2.0, 3.0}},
		},
		"gaps": {
			names: []string{"a", "b"},
			y: [][]float64{
				{1, math.NaN(), 3},
				{math.NaN(), 5, math.Inf(1)},
			},
			expected: [][]interface{}{
				{1.0, missingValue, 3.0},
				{missingValue, 5.0, missingValue},
			},
		},
		"more names than series": {
			names:    []string{"a", "b"},
			y:        [][]float64{{1, 2, 3}},
			expected: [][]interface{}{{1.0, 2.0, 3.0}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			line := LineTSeries("test", td.names, tSeries, td.y)
			require.Len(t, line.MultiSeries, len(td.expected))
			for i, series := range line.MultiSeries {
				data, ok := series.Data.([]opts.LineData)
				require.True(t, ok)
				assert.Equal(t, td.expected[i], lineValues(data))
			}
		})
	}
}

func TestLineForecaster(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := timedataset.GenerateDailyT(start, 4)

	td, err := timedataset.NewUnivariateDataset(tSeries[:3], []float64{1, math.NaN(), 3})
	require.NoError(t, err)
	fit := &Results{T: tSeries[:3], Forecast: []float64{1.5, 2, 2.5}, Components: forecast.Components{}}
	horizon := &Results{T: tSeries[3:], Forecast: []float64{4}}

	line := LineForecaster(td, fit, horizon)
	require.Len(t, line.MultiSeries, 3)

	expected := map[string][]interface{}{
		"Actual":   {1.0, missingValue, 3.0, missingValue},
		"Fit":      {1.5, 2.0, 2.5, missingValue},
		"Forecast": {missingValue, missingValue, missingValue, 4.0},
	}
	for _, series := range line.MultiSeries {
		data, ok := series.Data.([]opts.LineData)
		require.True(t, ok)
		assert.Equal(t, expected[series.Name], lineValues(data), series.Name)
	}
}
