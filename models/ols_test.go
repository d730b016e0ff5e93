package models

import (
	"testing"

	mat_ "github.com/aouyang1/go-neuralforecaster/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		err      error
		expected *OLSOptions
	}{
		"nil": {nil, nil, NewDefaultOLSOptions()},
		"valid": {
			&OLSOptions{
				FitIntercept: true,
			}, nil,
			&OLSOptions{
				FitIntercept: true,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorAs(t, err, &td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y:         []float64{2, 31, 109, 62, 87},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)

			y := mat.NewDense(len(td.y), 1, td.y)

			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			testModel(t, model, x, y, td.intercept, td.coef, tol)
		})
	}
}

func TestOLSRegressionErrors(t *testing.T) {
	testData := map[string]struct {
		x   mat.Matrix
		y   mat.Matrix
		opt *OLSOptions
		err error
	}{
		"no training matrix": {
			y:   mat.NewDense(2, 1, nil),
			err: ErrNoTrainingMatrix,
		},
		"no target matrix": {
			x:   mat.NewDense(2, 1, nil),
			err: ErrNoTargetMatrix,
		},
		"target length mismatch": {
			x:   mat.NewDense(2, 1, nil),
			y:   mat.NewDense(3, 1, nil),
			err: ErrTargetLenMismatch,
		},
		"fewer observations than features": {
			x:   mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			y:   mat.NewDense(2, 1, []float64{1, 2}),
			opt: &OLSOptions{FitIntercept: false},
			err: ErrTooFewObservations,
		},
		"intercept column exceeds observations": {
			x:   mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			y:   mat.NewDense(2, 1, []float64{1, 2}),
			err: ErrTooFewObservations,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewOLSRegression(td.opt)
			require.NoError(t, err)
			assert.ErrorIs(t, model.Fit(td.x, td.y), td.err)
		})
	}
}

func BenchmarkOLSRegression(b *testing.B) {
	x, y, err := generateEventData(1000, 100)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		model, err := NewOLSRegression(
			&OLSOptions{
				FitIntercept: false,
			},
		)
		if err != nil {
			b.Error(err)
			continue
		}
		if err := model.Fit(x, y); err != nil {
			b.Error(err)
			continue
		}
	}
}
