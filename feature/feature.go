// Package feature contains the typed labels and generated data columns that make up the design
// matrix of a forecast.
package feature

import "fmt"

// FeatureType identifies the model component a feature belongs to
type FeatureType string

const (
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeEvent       FeatureType = "event"
	FeatureTypeTime        FeatureType = "time"
)

// Feature is a label of a single column of the design matrix
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// Decode constructs a feature of the given type from its decoded labels
func Decode(ft FeatureType, labels map[string]string) (Feature, error) {
	switch ft {
	case FeatureTypeGrowth:
		return decodeGrowth(labels)
	case FeatureTypeSeasonality:
		return decodeSeasonality(labels)
	case FeatureTypeEvent:
		return decodeEvent(labels)
	case FeatureTypeTime:
		return NewTime(labels["name"]), nil
	}
	return nil, fmt.Errorf("%q, %w", ft, ErrUnknownFeatureType)
}
