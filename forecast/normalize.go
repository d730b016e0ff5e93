package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-neuralforecaster/forecast/options"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoFiniteObservations = errors.New("no finite observations to normalize with")

// Normalizer maps the target into the space the model is trained in. Weights of a fitted model
// are expressed in normalized units and predictions are mapped back with Inverse.
type Normalizer struct {
	Method string  `json:"method"`
	Shift  float64 `json:"shift"`
	Scale  float64 `json:"scale"`
}

// NewNormalizer fits the normalization parameters of method on y ignoring NaNs. A constant
// series keeps a scale of 1.
func NewNormalizer(method string, y []float64) (Normalizer, error) {
	norm := Normalizer{Method: method, Scale: 1.0}
	if method == options.NormalizeOff {
		return norm, nil
	}

	finite := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return Normalizer{}, ErrNoFiniteObservations
	}

	switch method {
	case options.NormalizeMinMax:
		minVal, maxVal := floats.Min(finite), floats.Max(finite)
		norm.Shift = minVal
		if maxVal > minVal {
			norm.Scale = maxVal - minVal
		}
	case options.NormalizeStandardize:
		mean, std := stat.MeanStdDev(finite, nil)
		norm.Shift = mean
		if std > 0 && !math.IsNaN(std) {
			norm.Scale = std
		}
	default:
		return Normalizer{}, fmt.Errorf("%q, %w", method, options.ErrUnknownNormalize)
	}
	return norm, nil
}

// Transform returns a normalized copy of y
func (n Normalizer) Transform(y []float64) []float64 {
	res := make([]float64, len(y))
	for i, v := range y {
		res[i] = (v - n.Shift) / n.scale()
	}
	return res
}

// Inverse returns a copy of the normalized values mapped back to the original units
func (n Normalizer) Inverse(y []float64) []float64 {
	res := make([]float64, len(y))
	for i, v := range y {
		res[i] = v*n.scale() + n.Shift
	}
	return res
}

// InverseScale maps normalized differences back to the original units without the shift
func (n Normalizer) InverseScale(y []float64) []float64 {
	res := make([]float64, len(y))
	for i, v := range y {
		res[i] = v * n.scale()
	}
	return res
}

func (n Normalizer) scale() float64 {
	if n.Scale == 0 {
		return 1.0
	}
	return n.Scale
}
