package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch       = errors.New("predicted and actual have different lengths")
	ErrNoScoredObservations = errors.New("no observation with a finite prediction and actual")
)

// Scores tracks the fit scores over the observations where both the prediction and the actual
// value are finite
type Scores struct {
	MSE          float64 `json:"mean_squared_error"`
	MAPE         float64 `json:"mean_average_percent_error"`
	R2           float64 `json:"r_squared"`
	Observations int     `json:"observations,omitempty"`
}

// scorable keeps the pairs where both values are finite
func scorable(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if !isFinite(predicted[i]) || !isFinite(actual[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := scorable(predicted, actual)
	if err != nil {
		return nil, err
	}
	if len(a) == 0 {
		return nil, ErrNoScoredObservations
	}

	return &Scores{
		MSE:          mse(p, a),
		MAPE:         mape(p, a),
		R2:           rSquared(p, a),
		Observations: len(a),
	}, nil
}

// MSE computes mean((y-yhat)^2) over the finite pairs. 0 means a perfect match.
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := scorable(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mse(p, a), nil
}

// MAPE computes mean(abs((y-yhat)/y)) over the finite pairs with a non zero actual value
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := scorable(predicted, actual)
	if err != nil {
		return 0, err
	}
	return mape(p, a), nil
}

// RSquared computes the coefficient of determination where 1.0 is a perfect fit. A constant
// actual series scores 1.0 only when matched exactly.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := scorable(predicted, actual)
	if err != nil {
		return 0, err
	}
	return rSquared(p, a), nil
}

func mse(p, a []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	d := make([]float64, len(a))
	floats.SubTo(d, a, p)
	return floats.Dot(d, d) / float64(len(a))
}

func mape(p, a []float64) float64 {
	var sum float64
	var n int
	for i := range a {
		if a[i] == 0 {
			continue
		}
		sum += math.Abs((a[i] - p[i]) / a[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func rSquared(p, a []float64) float64 {
	if len(a) == 0 {
		return 1.0
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		return r2
	}
	if floats.Equal(p, a) {
		return 1.0
	}
	return 0.0
}
