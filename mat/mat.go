// Package mat holds small helpers around gonum matrices shared by the regression models
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch = errors.New("column size mismatch")
	ErrNoMatrix    = errors.New("no matrix")
)

// NewDenseFromArray converts a row major slice of slices into a dense matrix. All rows must
// have the same number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// WithIntercept returns a copy of x with a constant 1.0 feature prepended as the first column
func WithIntercept(x mat.Matrix) (mat.Matrix, error) {
	if x == nil {
		return nil, ErrNoMatrix
	}
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var xWithOnes mat.Dense
	xWithOnes.Stack(onesMx, x.T())
	return xWithOnes.T(), nil
}

// Columns extracts every column of x as its own slice
func Columns(x mat.Matrix) ([][]float64, error) {
	if x == nil {
		return nil, ErrNoMatrix
	}
	_, n := x.Dims()
	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols, nil
}
