package models

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RegFuncAbs returns the mean absolute value of the weights. This is the penalty applied to
// each regularized group of coefficients. An empty slice has no penalty.
func RegFuncAbs(weights []float64) float64 {
	if len(weights) == 0 {
		return 0.0
	}
	return floats.Norm(weights, 1) / float64(len(weights))
}

// RegFuncAbsMatrix returns the mean absolute value over every element of the matrix
func RegFuncAbsMatrix(weights mat.Matrix) float64 {
	if weights == nil {
		return 0.0
	}
	m, n := weights.Dims()
	if m == 0 || n == 0 {
		return 0.0
	}
	var sum float64
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum += math.Abs(weights.At(i, j))
		}
	}
	return sum / float64(m*n)
}

// SoftThreshold returns 0.0 if the value is less than or equal to the gamma input
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}

// GroupLambdas spreads the regularization of each group evenly over its members so that the sum
// of the per feature L1 penalties equals lambda * RegFuncAbs(group weights). Features with a
// negative group are not regularized.
func GroupLambdas(groups []int, groupReg map[int]float64) []float64 {
	sizes := make(map[int]int)
	for _, g := range groups {
		if g < 0 {
			continue
		}
		sizes[g]++
	}

	lambdas := make([]float64, len(groups))
	for i, g := range groups {
		if g < 0 {
			continue
		}
		lambdas[i] = groupReg[g] / float64(sizes[g])
	}
	return lambdas
}

// Penalty computes the total regularization of the coefficients given their groups and the
// regularization strength of each group
func Penalty(coef []float64, groups []int, groupReg map[int]float64) float64 {
	members := make(map[int][]float64)
	for i, g := range groups {
		if g < 0 || i >= len(coef) {
			continue
		}
		members[g] = append(members[g], coef[i])
	}

	var penalty float64
	for _, g := range slices.Sorted(maps.Keys(members)) {
		penalty += groupReg[g] * RegFuncAbs(members[g])
	}
	return penalty
}
