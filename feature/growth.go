package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	GrowthOff    = "off"
	GrowthLinear = "linear"
)

type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// Linear returns the linear growth feature
func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

// String returns the string representation of the growth feature
func (g Growth) String() string {
	return fmt.Sprintf("growth_%s", g.Name)
}

// Get returns the value of an arbitrary label annd returns the value along with whether
// the label exists
func (g Growth) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return g.Name, true
	}
	return "", false
}

// Type returns the type of this feature
func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

// Decode converts the feature into a map of label values
func (g Growth) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = g.Name
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to a growth feature
func (g *Growth) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	g.Name = labelStr.Name
	return nil
}

func decodeGrowth(labels map[string]string) (*Growth, error) {
	return NewGrowth(labels["name"]), nil
}

// Generate returns the trend scaled so the training start maps to 0 and the training end to 1.
// Time points outside of the training range extrapolate linearly.
func (g Growth) Generate(t []time.Time, trainStartTime, trainEndTime time.Time) []float64 {
	res := make([]float64, len(t))
	span := trainEndTime.Sub(trainStartTime).Seconds()
	if span <= 0 {
		return res
	}
	for i, tPnt := range t {
		res[i] = tPnt.Sub(trainStartTime).Seconds() / span
	}
	return res
}
