package feature

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set represents a mapping to each feature data keyed by the string representation
// of the feature. Labels are kept sorted by their string representation and every
// feature column has the same number of observations.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

// NewSet returns an empty feature set
func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Rows returns the number of observations per feature
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the feature data. Columns shorter than the set are zero padded and if the
// data is longer all existing columns are zero padded to the new length.
func (s *Set) Set(f Feature, data []float64) *Set {
	if s.set == nil {
		s.set = make(map[string][]float64)
	}

	if len(data) > s.m {
		for label, vals := range s.set {
			s.set[label] = append(vals, make([]float64, len(data)-len(vals))...)
		}
		s.m = len(data)
	}
	if len(data) < s.m {
		data = append(data, make([]float64, s.m-len(data))...)
	}

	key := f.String()
	if _, exists := s.set[key]; !exists {
		idx := sort.Search(len(s.labels), func(i int) bool {
			return s.labels[i].String() >= key
		})
		s.labels = slices.Insert(s.labels, idx, f)
	}
	s.set[key] = data
	return s
}

// Get returns the data of a feature and whether it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) *Set {
	if s == nil {
		return s
	}
	key := f.String()
	if _, exists := s.set[key]; !exists {
		return s
	}
	delete(s.set, key)
	s.labels = slices.DeleteFunc(s.labels, func(label Feature) bool {
		return label.String() == key
	})
	return s
}

// Update sets every feature of the other set into this set
func (s *Set) Update(other *Set) *Set {
	if other == nil {
		return s
	}
	for _, label := range other.labels {
		s.Set(label, other.set[label.String()])
	}
	return s
}

// RemoveZeroOnlyFeatures drops every feature where all observations are 0
func (s *Set) RemoveZeroOnlyFeatures() {
	if s == nil {
		return
	}
	for _, label := range s.Labels().Labels() {
		data := s.set[label.String()]
		if floats.Norm(data, 1) == 0 {
			s.Del(label)
		}
	}
}

// Labels returns the sorted slice of all tracked features in the FeatureSet
func (s *Set) Labels() *Labels {
	if s == nil {
		return nil
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// Matrix returns a metric representation of the FeatureSet to be used with matrix methods
// The matrix has m rows representing the number of observations and n columns representing
// the number of features.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || len(s.labels) == 0 || s.m == 0 {
		return nil
	}

	m := s.m
	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([]float64, m*n)

	featNum := 0
	if intercept {
		for i := 0; i < m; i++ {
			idx := n * i
			obs[idx] = 1.0
		}
		featNum += 1
	}

	for _, label := range s.labels {
		feature := s.set[label.String()]
		for i := 0; i < len(feature); i++ {
			idx := n*i + featNum
			obs[idx] = feature[i]
		}
		featNum += 1
	}
	return mat.NewDense(m, n, obs)
}

// MatrixSlice returns the FeatureSet as a matrix but in the form of a slice of slices where
// each row represent feature. Takes an intercept input if we want to include the intercept
// term.
func (s *Set) MatrixSlice(intercept bool) [][]float64 {
	if s == nil || len(s.labels) == 0 {
		return nil
	}

	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([][]float64, 0, n)
	if intercept {
		ones := make([]float64, s.m)
		floats.AddConst(1.0, ones)
		obs = append(obs, ones)
	}

	for _, label := range s.labels {
		obs = append(obs, s.set[label.String()])
	}
	return obs
}
