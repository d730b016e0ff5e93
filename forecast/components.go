package forecast

// Components is the additive decomposition of a prediction in the original units. Trend holds
// the intercept with any growth, so the components sum to the prediction.
type Components struct {
	Trend       []float64 `json:"trend"`
	Seasonality []float64 `json:"seasonality"`
	Event       []float64 `json:"event"`
}
