package forecaster

import (
	"time"

	"github.com/aouyang1/go-neuralforecaster/forecast"
)

// Results holds the forecast of every requested time point along with its additive components
type Results struct {
	T          []time.Time         `json:"time"`
	Forecast   []float64           `json:"forecast"`
	Components forecast.Components `json:"components"`
}
