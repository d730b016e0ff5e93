package timedataset

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateT(t *testing.T) {
	nowFunc := func() time.Time {
		return time.Date(1970, 1, 8, 0, 0, 0, 0, time.UTC)
	}

	numPnts := 7
	res := GenerateT(numPnts, 24*time.Hour, nowFunc)
	assert.Len(t, res, numPnts)

	assert.Equal(t, res[0], time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, res[numPnts-1], time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC))
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	nowFunc := func() time.Time {
		return time.Date(1970, 1, 8, 0, 0, 0, 0, time.UTC)
	}

	tSeries := GenerateT(numPnts, 24*time.Hour, nowFunc)
	s.SetConst(tSeries, 2.0,
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, Series([]float64{3, 3, 2, 2, 3, 3, 3}), s)

	s.MaskWithWeekend(tSeries)
	assert.Equal(t, Series([]float64{0, 0, 2, 2, 0, 0, 0}), s)

	s.Add(GenerateConstY(numPnts, 1))
	s.MaskWithTimeRange(
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
		tSeries,
	)
	assert.Equal(t, Series([]float64{0, 0, 3, 3, 1, 0, 0}), s)
}

func TestGenerateDailyT(t *testing.T) {
	res := GenerateDailyT(time.Date(2022, 1, 1, 13, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, []time.Time{
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
	}, res)

	s := GenerateConstY(3, 1).SetAt(res, 7, res[1], time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Series([]float64{1, 7, 1}), s)
}

func TestGenerateNoiseSeeded(t *testing.T) {
	tSeries := GenerateDailyT(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	a := GenerateNoise(rand.New(rand.NewPCG(0, 0)), tSeries, 1.0, 0.5, 86400.0*7, 1.0, 0.0)
	b := GenerateNoise(rand.New(rand.NewPCG(0, 0)), tSeries, 1.0, 0.5, 86400.0*7, 1.0, 0.0)
	assert.Equal(t, a, b)
}
