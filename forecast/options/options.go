// Package options contains all forecast options for a linear fit of a univariate time series
// with regularized event and holiday regressors
package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/forecast/util"
	"github.com/aouyang1/go-neuralforecaster/models"
)

const (
	LabelTimeEpoch = "epoch"

	SolverMiniBatch         = "minibatch"
	SolverCoordinateDescent = "coordinate_descent"
	SolverOLS               = "ols"

	NormalizeMinMax      = "minmax"
	NormalizeStandardize = "standardize"
	NormalizeOff         = "off"
)

var (
	ErrInvalidEpochs          = models.ErrInvalidEpochs
	ErrInvalidBatchSize       = models.ErrInvalidBatchSize
	ErrInvalidLearningRate    = models.ErrInvalidLearningRate
	ErrNegativeRegularization = errors.New("negative regularization")
	ErrInvalidIterations      = errors.New("iterations must be non-negative")
	ErrInvalidTolerance       = errors.New("tolerance must be non-negative")
	ErrUnknownGrowth          = errors.New("unknown growth type")
	ErrUnknownNormalize       = errors.New("unknown normalization")
	ErrUnknownSolver          = errors.New("unknown solver")
	ErrUnknownTimeFeature     = errors.New("unknown time feature")
	ErrDuplicateEvent         = errors.New("event configured more than once")
)

// Options configures a forecast by specifying the training schedule, the trend and seasonality
// components, and the event and holiday regressors with their regularization strengths. Options
// are fixed for the lifetime of one fit.
type Options struct {
	// minibatch training related options
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`

	Solver string `json:"solver"`

	// coordinate descent related options
	Iterations int     `json:"iterations"`
	Tolerance  float64 `json:"tolerance"`

	Growth             string             `json:"growth"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	Normalize          string             `json:"normalize"`

	Events   []EventConfig   `json:"events"`
	Holidays *HolidaysConfig `json:"holidays,omitempty"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		Epochs:             models.DefaultEpochs,
		BatchSize:          models.DefaultBatchSize,
		LearningRate:       models.DefaultLearningRate,
		Solver:             SolverMiniBatch,
		Iterations:         models.DefaultIterations,
		Tolerance:          models.DefaultTolerance,
		Growth:             feature.GrowthLinear,
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		Normalize:          NormalizeMinMax,
	}
}

// Validate runs basic validation on the forecast options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	switch o.Solver {
	case SolverMiniBatch:
		if o.Epochs <= 0 {
			return nil, fmt.Errorf("got %d, %w", o.Epochs, ErrInvalidEpochs)
		}
		if o.BatchSize <= 0 {
			return nil, fmt.Errorf("got %d, %w", o.BatchSize, ErrInvalidBatchSize)
		}
		if !(o.LearningRate > 0 && o.LearningRate <= 1) {
			return nil, fmt.Errorf("got %f, %w", o.LearningRate, ErrInvalidLearningRate)
		}
	case SolverCoordinateDescent:
		if o.Iterations < 0 {
			return nil, fmt.Errorf("got %d, %w", o.Iterations, ErrInvalidIterations)
		}
		if o.Tolerance < 0 {
			return nil, fmt.Errorf("got %f, %w", o.Tolerance, ErrInvalidTolerance)
		}
	case SolverOLS:
	default:
		return nil, fmt.Errorf("%q, %w", o.Solver, ErrUnknownSolver)
	}

	switch o.Growth {
	case feature.GrowthOff, feature.GrowthLinear:
	default:
		return nil, fmt.Errorf("%q, %w", o.Growth, ErrUnknownGrowth)
	}

	switch o.Normalize {
	case NormalizeMinMax, NormalizeStandardize, NormalizeOff:
	default:
		return nil, fmt.Errorf("%q, %w", o.Normalize, ErrUnknownNormalize)
	}

	if o.SeasonalityOptions.Regularization < 0 {
		return nil, fmt.Errorf("seasonality, %w", ErrNegativeRegularization)
	}

	seen := make(map[string]struct{}, len(o.Events))
	for _, e := range o.Events {
		if err := e.Valid(); err != nil {
			return nil, fmt.Errorf("invalid event %q, %w", e.Name, err)
		}
		if _, exists := seen[e.Name]; exists {
			return nil, fmt.Errorf("%q, %w", e.Name, ErrDuplicateEvent)
		}
		seen[e.Name] = struct{}{}
	}
	if o.Holidays != nil {
		if err := o.Holidays.Valid(); err != nil {
			return nil, fmt.Errorf("invalid holidays, %w", err)
		}
	}
	return o, nil
}

// NewModel initializes the configured solver with one L1 multiplier per feature. The intercept
// is always fit and never regularized.
func (o *Options) NewModel(lambdas []float64) (models.Model, error) {
	switch o.Solver {
	case SolverMiniBatch:
		return models.NewMiniBatchRegression(o.NewMiniBatchOptions(lambdas))
	case SolverCoordinateDescent:
		return models.NewLassoRegression(o.NewLassoOptions(lambdas))
	case SolverOLS:
		for _, lambda := range lambdas {
			if lambda > 0 {
				slog.Warn("ordinary least squares ignores regularization", "solver", o.Solver)
				break
			}
		}
		return models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
	}
	return nil, fmt.Errorf("%q, %w", o.Solver, ErrUnknownSolver)
}

func (o *Options) NewMiniBatchOptions(lambdas []float64) *models.MiniBatchOptions {
	return &models.MiniBatchOptions{
		Epochs:       o.Epochs,
		BatchSize:    o.BatchSize,
		LearningRate: o.LearningRate,
		Lambdas:      lambdas,
		Seed:         o.Seed,
		FitIntercept: true,
	}
}

func (o *Options) NewLassoOptions(lambdas []float64) *models.LassoOptions {
	lassoOpt := models.NewDefaultLassoOptions()
	lassoOpt.Lambdas = lambdas
	lassoOpt.FitIntercept = true

	lassoOpt.Iterations = o.Iterations
	if o.Iterations == 0 {
		lassoOpt.Iterations = models.DefaultIterations
	}

	lassoOpt.Tolerance = o.Tolerance
	if o.Tolerance == 0 {
		lassoOpt.Tolerance = models.DefaultTolerance
	}
	return lassoOpt
}

// GenerateTimeFeatures returns the epoch time feature along with the growth features when enabled
func (o *Options) GenerateTimeFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) (*feature.Set, *feature.Set) {
	if o == nil {
		o = NewDefaultOptions()
	}

	tFeat := feature.NewSet()
	feat := feature.NewTime(LabelTimeEpoch)
	tFeat.Set(feat, feat.Generate(t))

	gFeat := feature.NewSet()
	if o.Growth == feature.GrowthLinear && trainEndTime.After(trainStartTime) {
		linearFeat := feature.Linear()
		gFeat.Set(linearFeat, linearFeat.Generate(t, trainStartTime, trainEndTime))
	}
	return tFeat, gFeat
}

// GenerateFourierFeatures generates the sine and cosine features of every configured seasonality
// that can be resolved at the sampling interval freq
func (o *Options) GenerateFourierFeatures(tFeat *feature.Set, freq time.Duration) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	x := feature.NewSet()

	o.SeasonalityOptions.removeDuplicates()
	for _, seasCfg := range o.SeasonalityOptions.SeasonalityConfigs {
		orders := seasCfg.ResolvableOrders(freq)
		if len(orders) == 0 {
			slog.Debug("skipping seasonality unresolvable at sampling interval", "name", seasCfg.Name, "period", seasCfg.Period, "freq", freq)
			continue
		}
		seasFeatures, err := generateFourierOrders(tFeat, orders, seasCfg.Period, seasCfg.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to generate seasonality features for %q, %w", seasCfg.Name, err)
		}
		x.Update(seasFeatures)
	}
	return x, nil
}

func generateFourierOrders(tFeatures *feature.Set, orders []int, periodDur time.Duration, label string) (*feature.Set, error) {
	if tFeatures == nil {
		return nil, ErrUnknownTimeFeature
	}

	col := LabelTimeEpoch
	tFeat, exists := tFeatures.Get(feature.NewTime(col))
	if !exists {
		return nil, ErrUnknownTimeFeature
	}

	period := periodDur.Seconds()

	x := feature.NewSet()
	for _, order := range orders {
		sinFeat := feature.NewSeasonality(col+"_"+label, feature.FourierCompSin, order)
		cosFeat := feature.NewSeasonality(col+"_"+label, feature.FourierCompCos, order)
		x.Set(sinFeat, sinFeat.Generate(tFeat, period))
		x.Set(cosFeat, cosFeat.Generate(tFeat, period))
	}

	return x, nil
}

func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sSolver: %s\n", prefix, util.IndentExpand(indent, indentGrowth), o.Solver); err != nil {
		return err
	}
	if o.Solver == SolverMiniBatch {
		if _, err := fmt.Fprintf(w, "%s%sEpochs: %d    Batch Size: %d    Learning Rate: %.3f    Seed: %d\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			o.Epochs, o.BatchSize, o.LearningRate, o.Seed); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sGrowth: %s    Normalize: %s\n",
		prefix, util.IndentExpand(indent, indentGrowth), o.Growth, o.Normalize); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.TablePrintEvents(w, prefix, indent, indentGrowth)
}
