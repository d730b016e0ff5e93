package options

import (
	"bytes"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/models"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compareFeatureSet(t *testing.T, expected, res *feature.Set, tol float64) {
	assert.Equal(t, expected.Len(), res.Len())
	require.Equal(t, expected.Labels(), res.Labels())

	for _, f := range res.Labels().Labels() {
		expVals, exists := expected.Get(f)
		require.True(t, exists)
		gotVals, exists := res.Get(f)
		require.True(t, exists)
		require.Equal(t, len(expVals), len(gotVals))
		assert.InDeltaSlice(t, expVals, gotVals, tol, fmt.Sprintf("feature: %+v, values: %+v\n", f, gotVals))
	}
}

func TestOptionsValidate(t *testing.T) {
	withOpt := func(f func(o *Options)) *Options {
		o := NewDefaultOptions()
		f(o)
		return o
	}

	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil":     {opt: nil, expected: NewDefaultOptions()},
		"default": {opt: NewDefaultOptions(), expected: NewDefaultOptions()},
		"zero epochs": {
			opt: withOpt(func(o *Options) { o.Epochs = 0 }),
			err: ErrInvalidEpochs,
		},
		"negative batch size": {
			opt: withOpt(func(o *Options) { o.BatchSize = -1 }),
			err: ErrInvalidBatchSize,
		},
		"learning rate above one": {
			opt: withOpt(func(o *Options) { o.LearningRate = 1.1 }),
			err: ErrInvalidLearningRate,
		},
		"nan learning rate": {
			opt: withOpt(func(o *Options) { o.LearningRate = math.NaN() }),
			err: ErrInvalidLearningRate,
		},
		"coordinate descent ignores epochs": {
			opt: withOpt(func(o *Options) {
				o.Solver = SolverCoordinateDescent
				o.Epochs = 0
			}),
			expected: withOpt(func(o *Options) {
				o.Solver = SolverCoordinateDescent
				o.Epochs = 0
			}),
		},
		"negative iterations": {
			opt: withOpt(func(o *Options) {
				o.Solver = SolverCoordinateDescent
				o.Iterations = -1
			}),
			err: ErrInvalidIterations,
		},
		"negative tolerance": {
			opt: withOpt(func(o *Options) {
				o.Solver = SolverCoordinateDescent
				o.Tolerance = -1
			}),
			err: ErrInvalidTolerance,
		},
		"unknown solver": {
			opt: withOpt(func(o *Options) { o.Solver = "sgd" }),
			err: ErrUnknownSolver,
		},
		"unknown growth": {
			opt: withOpt(func(o *Options) { o.Growth = "logistic" }),
			err: ErrUnknownGrowth,
		},
		"unknown normalize": {
			opt: withOpt(func(o *Options) { o.Normalize = "soft" }),
			err: ErrUnknownNormalize,
		},
		"negative seasonality regularization": {
			opt: withOpt(func(o *Options) { o.SeasonalityOptions.Regularization = -1 }),
			err: ErrNegativeRegularization,
		},
		"negative event regularization": {
			opt: withOpt(func(o *Options) { o.Events = []EventConfig{NewEventConfig("launch", -0.1)} }),
			err: ErrNegativeRegularization,
		},
		"duplicate event": {
			opt: withOpt(func(o *Options) {
				o.Events = []EventConfig{NewEventConfig("launch", 0.1), NewEventConfig("launch", 0.2)}
			}),
			err: ErrDuplicateEvent,
		},
		"invalid holidays": {
			opt: withOpt(func(o *Options) { o.Holidays = NewHolidaysConfig("", 0.01) }),
			err: ErrNoCountry,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestNewModel(t *testing.T) {
	lambdas := []float64{0.01, 0.01}

	testData := map[string]struct {
		solver   string
		expected models.Model
		err      error
	}{
		"minibatch":          {solver: SolverMiniBatch, expected: &models.MiniBatchRegression{}},
		"coordinate descent": {solver: SolverCoordinateDescent, expected: &models.LassoRegression{}},
		"ols":                {solver: SolverOLS, expected: &models.OLSRegression{}},
		"unknown":            {solver: "sgd", err: ErrUnknownSolver},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.Solver = td.solver
			model, err := opt.NewModel(lambdas)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, td.expected, model)
		})
	}
}

func TestNewSolverOptions(t *testing.T) {
	opt := NewDefaultOptions()
	opt.Epochs = 20
	opt.BatchSize = 64
	opt.LearningRate = 0.1
	opt.Seed = 7

	lambdas := []float64{0.01}
	assert.Equal(t, &models.MiniBatchOptions{
		Epochs:       20,
		BatchSize:    64,
		LearningRate: 0.1,
		Lambdas:      lambdas,
		Seed:         7,
		FitIntercept: true,
	}, opt.NewMiniBatchOptions(lambdas))

	opt.Iterations = 0
	opt.Tolerance = 0
	lassoOpt := opt.NewLassoOptions(lambdas)
	assert.Equal(t, models.DefaultIterations, lassoOpt.Iterations)
	assert.Equal(t, models.DefaultTolerance, lassoOpt.Tolerance)
	assert.Equal(t, lambdas, lassoOpt.Lambdas)
	assert.True(t, lassoOpt.FitIntercept)
}

func TestGenerateTimeFeatures(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := timedataset.GenerateDailyT(start, 5)
	end := tSeries[len(tSeries)-1]

	epoch := make([]float64, len(tSeries))
	for i, tPnt := range tSeries {
		epoch[i] = float64(tPnt.Unix())
	}

	testData := map[string]struct {
		growth   string
		start    time.Time
		end      time.Time
		expected *feature.Set
	}{
		"no growth": {
			growth:   feature.GrowthOff,
			start:    start,
			end:      end,
			expected: feature.NewSet(),
		},
		"linear growth": {
			growth: feature.GrowthLinear,
			start:  start,
			end:    end,
			expected: feature.NewSet().Set(
				feature.Linear(),
				[]float64{0, 0.25, 0.5, 0.75, 1.0},
			),
		},
		"linear growth on single point range": {
			growth:   feature.GrowthLinear,
			start:    start,
			end:      start,
			expected: feature.NewSet(),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.Growth = td.growth
			tFeat, gFeat := opt.GenerateTimeFeatures(tSeries, td.start, td.end)
			compareFeatureSet(t, feature.NewSet().Set(feature.NewTime(LabelTimeEpoch), epoch), tFeat, 1e-9)
			compareFeatureSet(t, td.expected, gFeat, 1e-9)
		})
	}
}

func TestGenerateFourierFeatures(t *testing.T) {
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		n        int
		freq     time.Duration
		seasOpt  SeasonalityOptions
		expected []string
	}{
		"daily data skips daily": {
			n:       14,
			freq:    24 * time.Hour,
			seasOpt: SeasonalityOptions{SeasonalityConfigs: []SeasonalityConfig{NewDailySeasonalityConfig(2), NewWeeklySeasonalityConfig(2)}},
			expected: []string{
				"seas_epoch_weekly_01_cos", "seas_epoch_weekly_01_sin",
				"seas_epoch_weekly_02_cos", "seas_epoch_weekly_02_sin",
			},
		},
		"hourly data": {
			n:       48,
			freq:    time.Hour,
			seasOpt: SeasonalityOptions{SeasonalityConfigs: []SeasonalityConfig{NewDailySeasonalityConfig(1)}},
			expected: []string{
				"seas_epoch_daily_01_cos", "seas_epoch_daily_01_sin",
			},
		},
		"no seasonality": {
			n:       14,
			freq:    24 * time.Hour,
			seasOpt: NoSeasonalityOptions(),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.SeasonalityOptions = td.seasOpt

			tSeries := timedataset.GenerateT(td.n, td.freq, func() time.Time {
				return start.Add(time.Duration(td.n) * td.freq)
			})
			tFeat, _ := opt.GenerateTimeFeatures(tSeries, tSeries[0], tSeries[len(tSeries)-1])

			x, err := opt.GenerateFourierFeatures(tFeat, td.freq)
			require.NoError(t, err)

			var labels []string
			for _, f := range x.Labels().Labels() {
				labels = append(labels, f.String())
			}
			assert.Equal(t, td.expected, labels)

			for _, f := range x.Labels().Labels() {
				vals, _ := x.Get(f)
				require.Len(t, vals, td.n)
				s := f.(*feature.Seasonality)
				switch s.FourierComp {
				case feature.FourierCompSin:
					assert.InDelta(t, 0.0, vals[0], 1e-9)
				case feature.FourierCompCos:
					assert.InDelta(t, 1.0, vals[0], 1e-9)
				}
			}
		})
	}

	_, err := NewDefaultOptions().GenerateFourierFeatures(feature.NewSet(), time.Hour)
	assert.ErrorIs(t, err, ErrUnknownTimeFeature)
}

func TestOptionsTablePrint(t *testing.T) {
	opt := NewDefaultOptions()
	opt.SeasonalityOptions = NoSeasonalityOptions()
	opt.Growth = feature.GrowthOff
	opt.Epochs = 20
	opt.BatchSize = 64

	var buf bytes.Buffer
	require.NoError(t, opt.TablePrint(&buf, "", "  ", 0))
	expected := `Solver: minibatch
  Epochs: 20    Batch Size: 64    Learning Rate: 0.100    Seed: 0
Growth: off    Normalize: minmax
Seasonality: None
Events: None
`
	assert.Equal(t, expected, buf.String())
}
