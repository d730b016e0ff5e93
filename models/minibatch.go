package models

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	mat_ "github.com/aouyang1/go-neuralforecaster/mat"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultEpochs       = 100
	DefaultBatchSize    = 32
	DefaultLearningRate = 0.1
)

var (
	ErrInvalidEpochs       = errors.New("epochs must be positive")
	ErrInvalidBatchSize    = errors.New("batch size must be positive")
	ErrInvalidLearningRate = errors.New("learning rate must be in (0, 1]")
	ErrDiverged            = errors.New("training diverged to a non-finite loss")
)

// MiniBatchOptions represents input options to train a linear model on shuffled minibatches
type MiniBatchOptions struct {
	// Epochs is the number of full passes over the training data
	Epochs int

	// BatchSize is the number of observations per update. The last batch of an epoch holds the
	// remainder.
	BatchSize int

	// LearningRate damps every coordinate step towards its batch optimum. 1.0 takes the full
	// proximal step.
	LearningRate float64

	// Lambdas holds one non-negative L1 multiplier per training feature. nil disables
	// regularization. The intercept is never regularized.
	Lambdas []float64

	// Seed fixes the shuffling of the observations so that fits are reproducible
	Seed uint64

	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on minibatch options
func (o *MiniBatchOptions) Validate() (*MiniBatchOptions, error) {
	if o == nil {
		o = NewDefaultMiniBatchOptions()
	}
	if o.Epochs <= 0 {
		return nil, fmt.Errorf("got %d, %w", o.Epochs, ErrInvalidEpochs)
	}
	if o.BatchSize <= 0 {
		return nil, fmt.Errorf("got %d, %w", o.BatchSize, ErrInvalidBatchSize)
	}
	if !(o.LearningRate > 0 && o.LearningRate <= 1) {
		return nil, fmt.Errorf("got %f, %w", o.LearningRate, ErrInvalidLearningRate)
	}
	for i, lambda := range o.Lambdas {
		if lambda < 0 {
			return nil, fmt.Errorf("lambda of feature %d, %w", i, ErrNegativeLambda)
		}
	}
	return o, nil
}

// NewDefaultMiniBatchOptions returns a default set of minibatch options
func NewDefaultMiniBatchOptions() *MiniBatchOptions {
	return &MiniBatchOptions{
		Epochs:       DefaultEpochs,
		BatchSize:    DefaultBatchSize,
		LearningRate: DefaultLearningRate,
		FitIntercept: true,
	}
}

// MiniBatchRegression trains an L1 regularized linear model over epochs of shuffled minibatches.
// On every batch the intercept and then each coefficient takes a proximal step on the batch
// squared loss scaled by the learning rate. The objective is the same as LassoRegression,
// 0.5*||y - intercept - X*beta||^2 + sum_j lambda_j*|beta_j|. Each batch carries the share of
// lambda_j given by its share of ||x_j||^2, so one epoch applies every penalty exactly once.
type MiniBatchRegression struct {
	opt *MiniBatchOptions

	lossHistory []float64

	coef      []float64
	intercept float64
	fitted    bool
}

// NewMiniBatchRegression initializes a minibatch model ready for fitting
func NewMiniBatchRegression(opt *MiniBatchOptions) (*MiniBatchRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &MiniBatchRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (r *MiniBatchRegression) Fit(x, y mat.Matrix) error {
	if r.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}

	m, n := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	lambdas := r.opt.Lambdas
	if lambdas == nil {
		lambdas = make([]float64, n)
	}
	if len(lambdas) != n {
		return fmt.Errorf("got %d lambdas for %d features, %w", len(lambdas), n, ErrLambdasLenMismatch)
	}

	xcols, err := mat_.Columns(x)
	if err != nil {
		return err
	}
	yArr := mat.Col(nil, 0, y)

	// the batch threshold lambda_j*(xdot_batch/xdot)/xdot_batch reduces to lambda_j/xdot
	gamma := make([]float64, n)
	for j, col := range xcols {
		if xdot := floats.Dot(col, col); xdot > 0 {
			gamma[j] = lambdas[j] / xdot
		}
	}

	rng := rand.New(rand.NewPCG(r.opt.Seed, r.opt.Seed))

	beta := make([]float64, n)
	var intercept float64

	batchSize := min(r.opt.BatchSize, max(m, 1))
	residual := make([]float64, batchSize)
	xb := make([][]float64, n)
	for j := range xb {
		xb[j] = make([]float64, batchSize)
	}

	r.lossHistory = make([]float64, 0, r.opt.Epochs)
	for epoch := 0; epoch < r.opt.Epochs; epoch++ {
		perm := rng.Perm(m)
		for start := 0; start < m; start += batchSize {
			idx := perm[start:min(start+batchSize, m)]
			b := len(idx)
			res := residual[:b]

			// gather the batch and its current residual
			for k, i := range idx {
				res[k] = yArr[i] - intercept
			}
			for j := 0; j < n; j++ {
				col := xb[j][:b]
				for k, i := range idx {
					col[k] = xcols[j][i]
				}
				if beta[j] != 0 {
					floats.AddScaled(res, -beta[j], col)
				}
			}

			if r.opt.FitIntercept {
				delta := r.opt.LearningRate * floats.Sum(res) / float64(b)
				intercept += delta
				floats.AddConst(-delta, res)
			}

			for j := 0; j < n; j++ {
				col := xb[j][:b]
				xdot := floats.Dot(col, col)
				if xdot == 0 {
					continue
				}
				target := beta[j] + floats.Dot(col, res)/xdot
				next := beta[j] + r.opt.LearningRate*(SoftThreshold(target, gamma[j])-beta[j])

				delta := next - beta[j]
				if delta == 0 {
					continue
				}
				floats.AddScaled(res, -delta, col)
				beta[j] = next
			}
		}

		loss := trainingLoss(xcols, yArr, intercept, beta, lambdas)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return fmt.Errorf("at epoch %d, %w", epoch, ErrDiverged)
		}
		r.lossHistory = append(r.lossHistory, loss)
		slog.Debug("finished training epoch", "epoch", epoch, "loss", loss)
	}

	r.intercept = intercept
	r.coef = beta
	r.fitted = true
	return nil
}

// trainingLoss is half the residual sum of squares over all observations plus the L1 penalty
func trainingLoss(xcols [][]float64, y []float64, intercept float64, beta, lambdas []float64) float64 {
	if len(y) == 0 {
		return 0.0
	}
	res := make([]float64, len(y))
	copy(res, y)
	floats.AddConst(-intercept, res)
	for j, col := range xcols {
		if beta[j] != 0 {
			floats.AddScaled(res, -beta[j], col)
		}
	}

	var penalty float64
	for j, b := range beta {
		penalty += lambdas[j] * math.Abs(b)
	}
	return 0.5*floats.Dot(res, res) + penalty
}

// LossHistory returns the training loss at the end of every epoch
func (r *MiniBatchRegression) LossHistory() []float64 {
	hist := make([]float64, len(r.lossHistory))
	copy(hist, r.lossHistory)
	return hist
}

// Predict using the minibatch model
func (r *MiniBatchRegression) Predict(x mat.Matrix) ([]float64, error) {
	if r.opt == nil {
		return nil, ErrNoOptions
	}
	if !r.fitted {
		return nil, ErrNotFitted
	}
	return predict(x, r.intercept, r.coef, r.opt.FitIntercept)
}

// Score computes the coefficient of determination of the prediction
func (r *MiniBatchRegression) Score(x, y mat.Matrix) (float64, error) {
	if r.opt == nil {
		return 0.0, ErrNoOptions
	}
	return score(r, x, y)
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (r *MiniBatchRegression) Intercept() float64 {
	return r.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (r *MiniBatchRegression) Coef() []float64 {
	c := make([]float64, len(r.coef))
	copy(c, r.coef)
	return c
}
