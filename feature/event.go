package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrUnknownFeatureType = errors.New("unknown feature type")
	ErrInvalidOffset      = errors.New("invalid event offset")
)

// Event feature representing the occurrence of a named event shifted by a number of days. An
// event with a window of days around it is modelled by one feature per offset.
type Event struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
}

// NewEvent creates a new event instance given a name and a day offset
func NewEvent(name string, offset int) *Event {
	return &Event{name, offset}
}

// String returns the string representation of the event feature
func (e Event) String() string {
	return fmt.Sprintf("event_%s_%+d", e.Name, e.Offset)
}

// Get returns the value of an arbitrary label annd returns the value along with whether
// the label exists
func (e Event) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return e.Name, true
	case "offset":
		return strconv.Itoa(e.Offset), true
	}
	return "", false
}

// Type returns the type of this feature
func (e Event) Type() FeatureType {
	return FeatureTypeEvent
}

// Decode converts the feature into a map of label values
func (e Event) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = e.Name
	res["offset"] = strconv.Itoa(e.Offset)
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to an event feature
func (e *Event) UnmarshalJSON(data []byte) error {
	var labelStr map[string]string
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	feat, err := decodeEvent(labelStr)
	if err != nil {
		return err
	}
	*e = *feat
	return nil
}

func decodeEvent(labels map[string]string) (*Event, error) {
	var offset int
	if offsetStr, exists := labels["offset"]; exists && offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("%q, %w", offsetStr, ErrInvalidOffset)
		}
	}
	return NewEvent(labels["name"], offset), nil
}

// Generate returns the occurrence mask of the event over t. A time point is active if it
// falls within the calendar day of any date shifted by the feature offset.
func (e Event) Generate(t []time.Time, dates []time.Time) []float64 {
	mask := make([]float64, len(t))
	if len(dates) == 0 {
		return mask
	}

	days := make([][2]time.Time, 0, len(dates))
	for _, d := range dates {
		start := time.Date(d.Year(), d.Month(), d.Day()+e.Offset, 0, 0, 0, 0, d.Location())
		days = append(days, [2]time.Time{start, start.AddDate(0, 0, 1)})
	}

	for i, tPnt := range t {
		for _, day := range days {
			if (tPnt.After(day[0]) || tPnt.Equal(day[0])) && tPnt.Before(day[1]) {
				mask[i] = 1.0
				break
			}
		}
	}
	return mask
}
