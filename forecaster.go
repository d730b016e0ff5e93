package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-neuralforecaster/event"
	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/forecast"
	"github.com/aouyang1/go-neuralforecaster/forecast/options"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrEventExists         = errors.New("event or holiday already registered")
	ErrFitted              = errors.New("forecaster has already been fit")
	ErrUnknownEvent        = errors.New("event or holiday not registered")
	ErrMissingEventColumn  = errors.New("registered event has no column in dataset")
	ErrUntrained           = errors.New("forecaster has not been fit")
	ErrNoOptionsInModel    = errors.New("no options set in model")
	ErrCannotInferInterval = errors.New("cannot infer interval from training data time")
)

// EventOptions configures the regularization and day window of registered events or holidays
type EventOptions struct {
	Regularization float64
	LowerWindow    int
	UpperWindow    int
}

// Forecaster fits a forecast model with regularized event and country holiday regressors and can
// be used to generate forecasts. Events and holidays are registered before fitting and every
// weight is frozen once the fit completes.
type Forecaster struct {
	opt        *options.Options
	eventDates map[string][]time.Time

	forecast *forecast.Forecast
	trainEnd time.Time

	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	fitted          bool
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *options.Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}

	// registrations must not leak into the caller's options
	cpy := *opt
	cpy.Events = slices.Clone(opt.Events)
	if opt.Holidays != nil {
		hol := *opt.Holidays
		hol.HolidayNames = slices.Clone(opt.Holidays.HolidayNames)
		cpy.Holidays = &hol
	}
	return &Forecaster{
		opt:        &cpy,
		eventDates: make(map[string][]time.Time),
	}, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model. This should be generated
// from a previous forecaster call to Model().
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Forecast.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	fc, err := forecast.NewFromModel(model.Forecast)
	if err != nil {
		return nil, fmt.Errorf("unable to load from forecast model, %w", err)
	}
	f := &Forecaster{
		opt:        model.Forecast.Options,
		eventDates: make(map[string][]time.Time),
		forecast:   fc,
		trainEnd:   model.Forecast.TrainEndTime,
		fitted:     true,
	}
	for name, dates := range model.Forecast.EventDates {
		f.eventDates[name] = slices.Clone(dates)
	}
	return f, nil
}

func (f *Forecaster) registered(name string) bool {
	if slices.ContainsFunc(f.opt.Events, func(e options.EventConfig) bool { return e.Name == name }) {
		return true
	}
	return slices.Contains(f.HolidayNames(), name)
}

// AddCountryHolidays registers every holiday of the country calendar as its own regressor. Holidays
// that never occur in the training data are skipped during the fit.
func (f *Forecaster) AddCountryHolidays(country string, eo *EventOptions) error {
	if f.fitted {
		return ErrFitted
	}
	if f.opt.Holidays != nil {
		return fmt.Errorf("holidays(%s), %w", f.opt.Holidays.Country, ErrEventExists)
	}
	if eo == nil {
		eo = &EventOptions{}
	}

	hol := options.NewHolidaysConfig(country, eo.Regularization)
	hol.LowerWindow = eo.LowerWindow
	hol.UpperWindow = eo.UpperWindow
	if err := hol.Valid(); err != nil {
		return fmt.Errorf("unable to add country holidays, %w", err)
	}
	f.opt.Holidays = hol
	return nil
}

// AddEvents registers user defined events sharing the same event options. Each event name becomes
// its own regressor group.
func (f *Forecaster) AddEvents(names []string, eo *EventOptions) error {
	if f.fitted {
		return ErrFitted
	}
	if eo == nil {
		eo = &EventOptions{}
	}

	added := make([]options.EventConfig, 0, len(names))
	for _, name := range names {
		if f.registered(name) || slices.ContainsFunc(added, func(e options.EventConfig) bool { return e.Name == name }) {
			return fmt.Errorf("%q, %w", name, ErrEventExists)
		}
		ev := options.NewEventConfig(name, eo.Regularization)
		ev.LowerWindow = eo.LowerWindow
		ev.UpperWindow = eo.UpperWindow
		if err := ev.Valid(); err != nil {
			return fmt.Errorf("invalid event %q, %w", name, err)
		}
		added = append(added, ev)
	}
	f.opt.Events = append(f.opt.Events, added...)
	return nil
}

// CreateDatasetWithEvents returns a copy of the dataset with one 0/1 occurrence column per
// registered event. Occurrences outside of the dataset time range are kept for predictions.
func (f *Forecaster) CreateDatasetWithEvents(td *timedataset.TimeDataset, occurrences []event.Occurrence) (*timedataset.TimeDataset, error) {
	if td == nil {
		return nil, timedataset.ErrNoTrainingData
	}
	for _, o := range occurrences {
		if err := o.Valid(); err != nil {
			return nil, fmt.Errorf("invalid event occurrence, %w", err)
		}
		if !slices.ContainsFunc(f.opt.Events, func(e options.EventConfig) bool { return e.Name == o.Name }) {
			return nil, fmt.Errorf("%q, %w", o.Name, ErrUnknownEvent)
		}
	}

	grouped := event.GroupOccurrences(occurrences)
	res := td.Copy()
	for _, ev := range f.opt.Events {
		dates := grouped[ev.Name]
		col := feature.NewEvent(ev.Name, 0).Generate(res.T, dates)
		if err := res.AddRegressor(ev.Name, col); err != nil {
			return nil, fmt.Errorf("unable to add event column, %w", err)
		}
		f.eventDates[ev.Name] = mergeDates(f.eventDates[ev.Name], dates)
	}
	return res, nil
}

// mergeDates returns the sorted union of calendar days of a and b
func mergeDates(a, b []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(a)+len(b))
	res := make([]time.Time, 0, len(a)+len(b))
	for _, d := range slices.Concat(a, b) {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		if _, exists := seen[day]; exists {
			continue
		}
		seen[day] = struct{}{}
		res = append(res, day)
	}
	slices.SortFunc(res, func(x, y time.Time) int { return x.Compare(y) })
	return res
}

// columnDates returns the time points where the occurrence column is set
func columnDates(t []time.Time, col []float64) []time.Time {
	var dates []time.Time
	for i, v := range col {
		if v != 0 {
			dates = append(dates, t[i])
		}
	}
	return dates
}

// Fit trains the forecast model on the dataset. Every registered event needs an occurrence column,
// see CreateDatasetWithEvents. The sampling interval is inferred from the data when freq is 0.
func (f *Forecaster) Fit(td *timedataset.TimeDataset, freq time.Duration) error {
	if f.fitted {
		return ErrFitted
	}
	checked, err := timedataset.Check(td, false)
	if err != nil {
		return fmt.Errorf("invalid training data, %w", err)
	}

	eventDates := make(map[string][]time.Time, len(f.opt.Events))
	for _, ev := range f.opt.Events {
		col, exists := checked.Regressors[ev.Name]
		if !exists {
			return fmt.Errorf("%q, %w", ev.Name, ErrMissingEventColumn)
		}
		eventDates[ev.Name] = mergeDates(f.eventDates[ev.Name], columnDates(checked.T, col))
	}

	fc, err := forecast.New(f.opt)
	if err != nil {
		return err
	}
	if err := fc.Fit(checked, freq, eventDates); err != nil {
		return fmt.Errorf("unable to fit forecast, %w", err)
	}
	fitResults, err := predict(fc, checked.T)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}

	// only a complete fit freezes the forecaster
	f.forecast = fc
	f.eventDates = eventDates
	f.trainEnd = checked.T[len(checked.T)-1]
	f.fitTrainingData = checked
	f.fitResults = fitResults
	if f.opt.Holidays != nil {
		f.opt.Holidays.HolidayNames = f.fitHolidayNames(fc)
	}
	f.fitted = true
	return nil
}

// fitHolidayNames lists the holidays that received a regressor in calendar order
func (f *Forecaster) fitHolidayNames(fc *forecast.Forecast) []string {
	fitNames := make(map[string]struct{})
	for _, label := range fc.FeatureLabels() {
		if label.Type() != feature.FeatureTypeEvent {
			continue
		}
		name, _ := label.Get("name")
		fitNames[name] = struct{}{}
	}
	holidays, err := event.CountryHolidays(f.opt.Holidays.Country)
	if err != nil {
		return nil
	}
	var names []string
	for _, hol := range holidays {
		if _, exists := fitNames[hol.Name]; !exists || slices.Contains(f.EventNames(), hol.Name) {
			continue
		}
		if slices.Contains(names, hol.Name) {
			continue
		}
		names = append(names, hol.Name)
	}
	return names
}

// Predict takes in any set of time samples and generates a forecast along with its components
func (f *Forecaster) Predict(t []time.Time) (*Results, error) {
	if !f.fitted {
		return nil, ErrUntrained
	}
	return predict(f.forecast, t)
}

func predict(fc *forecast.Forecast, t []time.Time) (*Results, error) {
	res, comp, err := fc.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict forecasts, %w", err)
	}
	return &Results{
		T:          slices.Clone(t),
		Forecast:   res,
		Components: comp,
	}, nil
}

// MakeFutureTimes returns periods time points after the end of the training data spaced by the
// sampling interval of the fit
func (f *Forecaster) MakeFutureTimes(periods int) ([]time.Time, error) {
	if !f.fitted {
		return nil, ErrUntrained
	}
	return timedataset.TimeSlice{f.trainEnd}.Extend(periods, f.forecast.Freq()), nil
}

// EventWeights returns the frozen weights of a registered event or fitted holiday keyed by the
// feature name, e.g. event_Labor Day_+0. Weights are in normalized units.
func (f *Forecaster) EventWeights(name string) (map[string]float64, error) {
	if !f.fitted {
		return nil, ErrUntrained
	}
	if !f.registered(name) {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownEvent)
	}
	return f.forecast.EventWeights(name)
}

// EventNames returns the names of the registered user defined events
func (f *Forecaster) EventNames() []string {
	return f.opt.EventNames()
}

// HolidayNames returns the holidays modelled by the fit. Before fitting this is any explicit
// holiday filter of the options.
func (f *Forecaster) HolidayNames() []string {
	if f.opt.Holidays == nil {
		return nil
	}
	return slices.Clone(f.opt.Holidays.HolidayNames)
}

// Intercept returns the intercept of the fit in normalized units
func (f *Forecaster) Intercept() float64 {
	if !f.fitted {
		return 0
	}
	return f.forecast.Intercept()
}

// Coefficients returns all coefficient weights associated with the feature label string
func (f *Forecaster) Coefficients() (map[string]float64, error) {
	if !f.fitted {
		return nil, ErrUntrained
	}
	return f.forecast.Coefficients()
}

// Model generates a serializeable representation of the fit options and the forecast model. This
// can be used to initialize a new Forecaster for immediate predictions skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	if !f.fitted {
		return Model{}, ErrUntrained
	}
	m, err := f.forecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch forecast model, %w", err)
	}
	return Model{Forecast: m}, nil
}

// ModelEq returns a string representation of the fit model represented as
// y ~ b + m1x1 + m2x2 ...
func (f *Forecaster) ModelEq() (string, error) {
	if !f.fitted {
		return "", ErrUntrained
	}
	return f.forecast.ModelEq()
}

// Scores returns the fit scores of the training data
func (f *Forecaster) Scores() forecast.Scores {
	if !f.fitted {
		return forecast.Scores{}
	}
	return f.forecast.Scores()
}

// Residuals returns the difference between the fit and the training data
func (f *Forecaster) Residuals() []float64 {
	if !f.fitted {
		return nil
	}
	return f.forecast.Residuals()
}

// LossHistory returns the training loss per epoch of the minibatch solver
func (f *Forecaster) LossHistory() []float64 {
	if !f.fitted {
		return nil
	}
	return f.forecast.LossHistory()
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the results of the fit over the training data
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// PlotOpts sets the horizon to forecast out. By default will use 10% of the training size spaced
// by the sampling interval of the fit.
type PlotOpts struct {
	HorizonCnt      int
	HorizonInterval time.Duration
}

// PlotFit uses the Apache Echarts library to render an html page showing the resulting fit,
// model components, and fit residual
func (f *Forecaster) PlotFit(w io.Writer, opt *PlotOpts) error {
	td := f.TrainingData()
	if td == nil || len(td.T) < 2 {
		return ErrCannotInferInterval
	}
	lastTime := td.T[len(td.T)-1]

	horizonCnt := len(td.T) / 10
	horizonInterval := f.forecast.Freq()
	if opt != nil {
		horizonCnt = opt.HorizonCnt
		if opt.HorizonInterval > 0 {
			horizonInterval = opt.HorizonInterval
		}
	}
	if horizonCnt < 1 {
		horizonCnt = 1
	}

	t := make([]time.Time, 0, len(td.T)+horizonCnt)
	t = append(t, td.T...)
	horizon := make([]time.Time, 0, horizonCnt)
	zpad := make([]float64, 0, horizonCnt)
	for i := 0; i < horizonCnt; i++ {
		nextT := lastTime.Add(time.Duration(i+1) * horizonInterval)
		horizon = append(horizon, nextT)
		t = append(t, nextT)
		zpad = append(zpad, math.NaN())
	}

	forecastRes, err := f.Predict(horizon)
	if err != nil {
		return fmt.Errorf("unable to predict with horizon, %w", err)
	}

	residuals := append(f.Residuals(), zpad...)
	trendComp := append(slices.Clone(f.fitResults.Components.Trend), forecastRes.Components.Trend...)
	seasonComp := append(slices.Clone(f.fitResults.Components.Seasonality), forecastRes.Components.Seasonality...)
	eventComp := append(slices.Clone(f.fitResults.Components.Event), forecastRes.Components.Event...)

	page := components.NewPage()
	page.AddCharts(
		LineForecaster(td, f.fitResults, forecastRes),
		LineTSeries(
			"Forecast Components",
			[]string{"Trend", "Seasonality", "Events"},
			t,
			[][]float64{
				trendComp,
				seasonComp,
				eventComp,
			},
		),
		LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			t,
			[][]float64{residuals},
		),
	)
	return page.Render(w)
}
