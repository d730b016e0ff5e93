// Package forecast fits a single linear decomposition of a time series into trend, seasonality
// and regularized event components
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/aouyang1/go-neuralforecaster/feature"
	"github.com/aouyang1/go-neuralforecaster/forecast/options"
	"github.com/aouyang1/go-neuralforecaster/models"
	"github.com/aouyang1/go-neuralforecaster/stats"
	"github.com/aouyang1/go-neuralforecaster/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// VIFThreshold is the variance inflation factor above which an event feature is reported
	// as collinear with the other event features
	VIFThreshold = 10.0

	groupUnregularized = -1
	groupSeasonality   = 0
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrNoPredictionTimes        = errors.New("no times to predict")
)

// Forecast represents a single forecast model of a time series. The target is normalized before
// training and the linear model is fit with the configured solver where every event shares an L1
// penalty across its features. Weights are reported in normalized units.
type Forecast struct {
	opt    *options.Options
	scores *Scores // score calculations after training

	fLabels *feature.Labels
	groups  []options.RegressorGroup
	norm    Normalizer

	trainStartTime time.Time
	trainEndTime   time.Time
	freq           time.Duration
	eventDates     map[string][]time.Time

	residual        []float64
	trainComponents Components
	lossHistory     []float64

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	opt, err := model.Options.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid model options, %w", err)
	}

	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	f := &Forecast{
		opt:            opt,
		fLabels:        feature.NewLabels(labels),
		norm:           model.Normalizer,
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		freq:           model.Freq,
		eventDates:     copyDates(model.EventDates),
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

func copyDates(dates map[string][]time.Time) map[string][]time.Time {
	res := make(map[string][]time.Time, len(dates))
	for name, d := range dates {
		res[name] = slices.Clone(d)
	}
	return res
}

func (f *Forecast) generateFeatures(t []time.Time) (*feature.Set, []options.RegressorGroup, error) {
	if f == nil {
		return nil, nil, ErrUninitializedForecast
	}

	tFeat, x := f.opt.GenerateTimeFeatures(t, f.trainStartTime, f.trainEndTime)

	seasFeat, err := f.opt.GenerateFourierFeatures(tFeat, f.freq)
	if err != nil {
		return nil, nil, err
	}
	x.Update(seasFeat)

	eFeat, groups, err := f.opt.GenerateEventFeatures(t, f.eventDates)
	if err != nil {
		return nil, nil, err
	}
	x.Update(eFeat)

	return x, groups, nil
}

// Fit takes the training data and fits a forecast model for growth, seasonal components, events
// and intercept. NaN observations are ignored. The sampling interval is estimated from the data
// if freq is not set. eventDates maps every configured event to its dates.
func (f *Forecast) Fit(td *timedataset.TimeDataset, freq time.Duration, eventDates map[string][]time.Time) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	checked, err := timedataset.Check(td, false)
	if err != nil {
		return fmt.Errorf("invalid training data, %w", err)
	}
	trainingData := checked.DropNan()
	if len(trainingData.T) <= 1 {
		return ErrInsufficientTrainingData
	}

	if freq <= 0 {
		freq, err = timedataset.TimeSlice(trainingData.T).EstimateFreq()
		if err != nil {
			return fmt.Errorf("unable to infer sampling interval, %w", err)
		}
	}
	if gaps := timedataset.TimeSlice(checked.T).Gaps(freq); gaps > 0 {
		slog.Warn("training data has missing time points", "gaps", gaps, "freq", freq)
	}

	f.freq = freq
	f.trainStartTime = trainingData.T[0]
	f.trainEndTime = trainingData.T[len(trainingData.T)-1]
	f.eventDates = copyDates(eventDates)

	f.norm, err = NewNormalizer(f.opt.Normalize, trainingData.Y)
	if err != nil {
		return fmt.Errorf("unable to normalize training data, %w", err)
	}

	x, groups, err := f.generateFeatures(trainingData.T)
	if err != nil {
		return fmt.Errorf("unable to generate features, %w", err)
	}
	f.fLabels = x.Labels()
	f.groups = groups
	warnCollinearEvents(x)

	observations := f.norm.Transform(trainingData.Y)
	if err := f.fitModel(x, observations); err != nil {
		return err
	}
	f.trained = true

	// use input training to include NaNs
	predicted, comp, err := f.Predict(checked.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, checked.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(checked.Y))
	floats.SubTo(residual, checked.Y, predicted)
	f.residual = residual

	return nil
}

func (f *Forecast) fitModel(x *feature.Set, observations []float64) error {
	f.lossHistory = nil
	if x.Len() == 0 {
		slog.Warn("no features to fit, using intercept only")
		f.intercept = floats.Sum(observations) / float64(len(observations))
		f.coef = nil
		return nil
	}

	model, err := f.opt.NewModel(f.lambdas())
	if err != nil {
		return fmt.Errorf("unable to initialize model, %w", err)
	}

	y := mat.NewDense(len(observations), 1, observations)
	if err := model.Fit(x.Matrix(false), y); err != nil {
		return fmt.Errorf("unable to fit model, %w", err)
	}
	f.intercept = model.Intercept()
	f.coef = model.Coef()

	if mb, ok := model.(*models.MiniBatchRegression); ok {
		f.lossHistory = mb.LossHistory()
	}
	return nil
}

// regularizationGroups assigns every feature to a penalty group. Growth is never regularized,
// seasonality shares one group and each event or holiday has its own group.
func (f *Forecast) regularizationGroups() ([]int, map[int]float64) {
	groupOf := make(map[string]int)
	groupReg := map[int]float64{
		groupSeasonality: f.opt.SeasonalityOptions.Regularization,
	}
	for i, g := range f.groups {
		groupReg[i+1] = g.Regularization
		for _, feat := range g.Features {
			groupOf[feat.String()] = i + 1
		}
	}

	labels := f.fLabels.Labels()
	groups := make([]int, len(labels))
	for i, label := range labels {
		switch label.Type() {
		case feature.FeatureTypeSeasonality:
			groups[i] = groupSeasonality
		case feature.FeatureTypeEvent:
			g, exists := groupOf[label.String()]
			if !exists {
				g = groupUnregularized
			}
			groups[i] = g
		default:
			groups[i] = groupUnregularized
		}
	}
	return groups, groupReg
}

func (f *Forecast) lambdas() []float64 {
	groups, groupReg := f.regularizationGroups()
	return models.GroupLambdas(groups, groupReg)
}

func warnCollinearEvents(x *feature.Set) {
	labels := x.Labels()
	all := labels.Labels()
	events := make(map[string][]float64)
	for _, i := range labels.OfType(feature.FeatureTypeEvent) {
		label := all[i]
		vals, _ := x.Get(label)
		events[label.String()] = vals
	}
	if len(events) < 2 {
		return
	}

	vif, err := stats.VarianceInflationFactor(events)
	if err != nil {
		slog.Warn("unable to compute variance inflation factor", "error", err.Error())
		return
	}
	for _, label := range slices.Sorted(maps.Keys(vif)) {
		if vif[label] > VIFThreshold {
			slog.Warn("event feature is collinear with other events", "name", label, "vif", vif[label])
		}
	}
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}
	if len(t) == 0 {
		return nil, Components{}, ErrNoPredictionTimes
	}

	x, _, err := f.generateFeatures(t)
	if err != nil {
		return nil, Components{}, err
	}

	trend := make([]float64, len(t))
	floats.AddConst(f.intercept, trend)
	seasonality := make([]float64, len(t))
	events := make([]float64, len(t))

	for i, label := range f.fLabels.Labels() {
		vals, exists := x.Get(label)
		if !exists || f.coef[i] == 0 {
			continue
		}
		switch label.Type() {
		case feature.FeatureTypeSeasonality:
			floats.AddScaled(seasonality, f.coef[i], vals)
		case feature.FeatureTypeEvent:
			floats.AddScaled(events, f.coef[i], vals)
		default:
			floats.AddScaled(trend, f.coef[i], vals)
		}
	}

	res := make([]float64, len(t))
	floats.Add(res, trend)
	floats.Add(res, seasonality)
	floats.Add(res, events)

	comp := Components{
		Trend:       f.norm.Inverse(trend),
		Seasonality: f.norm.InverseScale(seasonality),
		Event:       f.norm.InverseScale(events),
	}
	return f.norm.Inverse(res), comp, nil
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil || f.fLabels == nil {
		return nil
	}

	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.FeatureLabels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// EventWeights returns the weight of every feature of the named event or holiday keyed by the
// string representation of the feature. Event weights are in normalized units.
func (f *Forecast) EventWeights(name string) (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}

	res := make(map[string]float64)
	for i, label := range f.FeatureLabels() {
		if label.Type() != feature.FeatureTypeEvent {
			continue
		}
		if evName, _ := label.Get("name"); evName != name {
			continue
		}
		res[label.String()] = f.coef[i]
	}
	return res, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// Normalizer returns the normalization fit on the training data
func (f *Forecast) Normalizer() Normalizer {
	if f == nil {
		return Normalizer{}
	}
	return f.norm
}

// Freq returns the sampling interval the forecast was trained with
func (f *Forecast) Freq() time.Duration {
	if f == nil {
		return 0
	}
	return f.freq
}

// Penalty returns the total regularization of the fitted event and seasonality weights
func (f *Forecast) Penalty() float64 {
	if f == nil || !f.trained {
		return 0
	}
	groups, groupReg := f.regularizationGroups()
	return models.Penalty(f.coef, groups, groupReg)
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	labels := f.FeatureLabels()
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	w := Weights{
		Intercept: f.intercept,
		Coef:      fws,
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Freq:           f.freq,
		Options:        f.opt,
		Normalizer:     f.norm,
		EventDates:     copyDates(f.eventDates),
		Weights:        w,
		Scores:         f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}

	eq := "y ~ "

	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	eq += fmt.Sprintf("%.2f", f.Intercept())
	labels := f.FeatureLabels()
	for i := 0; i < len(f.coef); i++ {
		w := coef[labels[i].String()]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, labels[i])
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil {
		return Scores{}
	}
	if f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// LossHistory returns the training loss of every epoch when trained with minibatches
func (f *Forecast) LossHistory() []float64 {
	if f == nil {
		return nil
	}
	return slices.Clone(f.lossHistory)
}

// TrendComponent represents the intercept and growth of the model over the training data
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	return slices.Clone(f.trainComponents.Trend)
}

// SeasonalityComponent represents the overall seasonal component of the model
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	return slices.Clone(f.trainComponents.Seasonality)
}

// EventComponent represents the overall event and holiday component of the model
func (f *Forecast) EventComponent() []float64 {
	if f == nil {
		return nil
	}
	return slices.Clone(f.trainComponents.Event)
}
