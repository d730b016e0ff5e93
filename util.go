package forecaster

import (
	"math"
	"time"

	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missingValue is rendered by echarts as a gap in the line
const missingValue = "-"

func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: missingValue}
	}
	return opts.LineData{Value: v}
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaNs are drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			lineData[i] = append(lineData[i], lineValue(y[i][j]))
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		if i >= len(lineData) {
			break
		}
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// LineForecaster generates an echart line chart of the training data along with the fit and the
// forecast over the horizon.
func LineForecaster(trainingData *timedataset.TimeDataset, fitRes, horizonRes *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Forecast Fit",
			},
		),
	)

	n := len(trainingData.T) + len(horizonRes.T)
	t := make([]time.Time, 0, n)
	t = append(t, trainingData.T...)
	t = append(t, horizonRes.T...)

	lineDataActual := make([]opts.LineData, 0, n)
	lineDataFit := make([]opts.LineData, 0, n)
	lineDataForecast := make([]opts.LineData, 0, n)

	for i := 0; i < len(trainingData.T); i++ {
		lineDataActual = append(lineDataActual, lineValue(trainingData.Y[i]))
		lineDataFit = append(lineDataFit, lineValue(fitRes.Forecast[i]))
		lineDataForecast = append(lineDataForecast, lineValue(math.NaN()))
	}
	for i := 0; i < len(horizonRes.T); i++ {
		lineDataActual = append(lineDataActual, lineValue(math.NaN()))
		lineDataFit = append(lineDataFit, lineValue(math.NaN()))
		lineDataForecast = append(lineDataForecast, lineValue(horizonRes.Forecast[i]))
	}

	line.SetXAxis(t).
		AddSeries("Actual", lineDataActual).
		AddSeries("Fit", lineDataFit).
		AddSeries("Forecast", lineDataForecast)
	return line
}
