// Package stats holds diagnostics computed over the feature columns of a design matrix
package stats

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/aouyang1/go-neuralforecaster/models"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
)

// VarianceInflationFactor regresses every feature on all of the other features and returns
// 1/(1-R^2) keyed by feature name. A feature perfectly explained by the others has an infinite
// factor. Features are regressed in name order.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	n := len(features)
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, ErrFeatureLenMismatch
		}
	}

	labels := slices.Sorted(maps.Keys(features))

	vif := make(map[string]float64, n)
	x := mat.NewDense(m, n-1, nil)
	for _, label := range labels {
		y := mat.NewDense(m, 1, features[label])
		c := 0
		for _, otherLabel := range labels {
			if otherLabel == label {
				continue
			}
			x.SetCol(c, features[otherLabel])
			c++
		}

		model, err := models.NewOLSRegression(&models.OLSOptions{FitIntercept: true})
		if err != nil {
			return nil, err
		}
		if err := model.Fit(x, y); err != nil {
			return nil, fmt.Errorf("unable to regress %s on other features, %w", label, err)
		}
		r2, err := model.Score(x, y)
		if err != nil {
			return nil, fmt.Errorf("unable to score %s, %w", label, err)
		}

		switch {
		case math.IsNaN(r2):
			vif[label] = 1.0
		case r2 >= 1.0:
			vif[label] = math.Inf(1)
		default:
			vif[label] = 1.0 / (1.0 - r2)
		}
	}
	return vif, nil
}
