// Package timedataset holds the validated time series a forecaster is trained on along with
// the synthetic series generators used by examples and tests.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrNoTrainingData       = errors.New("no training data")
	ErrNonMontonic          = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch   = errors.New("time feature has a different length than observations")
	ErrRegressorLenMismatch = errors.New("regressor has a different length than time feature")
	ErrUnsetTime            = errors.New("unset time in time feature")
	ErrInvalidValue         = errors.New("observation is NaN or infinite")
	ErrCannotInferFreq      = errors.New("cannot infer frequency from time feature")
	ErrRegressorExists      = errors.New("regressor already exists in dataset")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length. Regressors are optional named columns aligned with T, e.g.
// 0/1 occurrence columns of events.
type TimeDataset struct {
	T          []time.Time
	Y          []float64
	Regressors map[string][]float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// Copy returns a deep copy of the dataset including its regressors
func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.Y))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)

	res := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
	if td.Regressors != nil {
		res.Regressors = make(map[string][]float64, len(td.Regressors))
		for name, col := range td.Regressors {
			colCopy := make([]float64, len(col))
			copy(colCopy, col)
			res.Regressors[name] = colCopy
		}
	}
	return res
}

// AddRegressor attaches a named column to the dataset. The column must match the length of
// the time feature.
func (td *TimeDataset) AddRegressor(name string, col []float64) error {
	if _, exists := td.Regressors[name]; exists {
		return fmt.Errorf("%s, %w", name, ErrRegressorExists)
	}
	if len(col) != len(td.T) {
		return fmt.Errorf("regressor %s has length %d, expected %d, %w", name, len(col), len(td.T), ErrRegressorLenMismatch)
	}
	if td.Regressors == nil {
		td.Regressors = make(map[string][]float64)
	}
	colCopy := make([]float64, len(col))
	copy(colCopy, col)
	td.Regressors[name] = colCopy
	return nil
}

// RegressorNames returns the sorted names of all regressor columns
func (td *TimeDataset) RegressorNames() []string {
	if td == nil {
		return nil
	}
	names := make([]string, 0, len(td.Regressors))
	for name := range td.Regressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DropNan returns a copy of the dataset with every row removed where the observation is NaN.
// Regressor rows are dropped alongside.
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}

	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	if td.Regressors != nil {
		res.Regressors = make(map[string][]float64, len(td.Regressors))
		for name := range td.Regressors {
			res.Regressors[name] = make([]float64, 0, len(td.T))
		}
	}

	for i := 0; i < len(td.T); i++ {
		if math.IsNaN(td.Y[i]) {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, td.Y[i])
		for name, col := range td.Regressors {
			res.Regressors[name] = append(res.Regressors[name], col[i])
		}
	}
	return res
}

// Check validates a dataset before training and returns a validated copy. Timestamps must be
// set, strictly increasing and without duplicates, and all regressors must be aligned with the
// time feature. If checkY is set every observation must be a finite value, otherwise NaNs are
// allowed and will be dropped during training.
func Check(td *TimeDataset, checkY bool) (*TimeDataset, error) {
	if td == nil || len(td.T) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(td.T) != len(td.Y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(td.T), len(td.Y), ErrDatasetLenMismatch,
		)
	}

	for i, tPnt := range td.T {
		if tPnt.IsZero() {
			return nil, fmt.Errorf("at %d, %w", i, ErrUnsetTime)
		}
		if i > 0 && !tPnt.After(td.T[i-1]) {
			return nil, fmt.Errorf("non-monotonic or duplicate time at %d, %w", i, ErrNonMontonic)
		}
	}

	for name, col := range td.Regressors {
		if len(col) != len(td.T) {
			return nil, fmt.Errorf("regressor %s has length %d, expected %d, %w", name, len(col), len(td.T), ErrRegressorLenMismatch)
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("regressor %s at %d, %w", name, i, ErrInvalidValue)
			}
		}
	}

	if checkY {
		for i, v := range td.Y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("observation at %d, %w", i, ErrInvalidValue)
			}
		}
	}

	return td.Copy(), nil
}
