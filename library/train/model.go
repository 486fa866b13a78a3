package train

import (
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// Model is the generative point-process model being fit.  The trainer only
// sees this interface; *glm.GLM satisfies it.
type Model interface {
	// NParams is the length of the flat parameter vector.
	NParams() int

	// Params assembles the flat parameter vector [bias, kappa..., eta...].
	Params() []float64

	// SetParams overwrites the model's parameters from a flat vector of
	// exactly NParams values, panicking otherwise.  The trainer calls it
	// after every optimizer step so the sampler stays in sync.
	SetParams(theta []float64)

	// Design builds the [time, trial, basis] regressor tensor for the
	// given spike masks and optional stimulus.
	Design(t []float64, maskSpikes *etensor.Float64, stim []float64) *etensor.Float64

	// Rate maps design and parameters to the positive conditional
	// intensity [time, trial].
	Rate(X *etensor.Float64, theta []float64) *etensor.Float64

	// NegLogLikelihood of the spike masks given the rate, bin width dt.
	NegLogLikelihood(dt float64, maskSpikes, r *etensor.Float64) float64

	// LogProba is the per-trial log-probability of each spike train,
	// the REINFORCE weight of the surrogate.
	LogProba(dt float64, maskSpikes, r *etensor.Float64) []float64

	// Score is the closed-form per-trial gradient of the log-likelihood
	// w.r.t. the parameters, [trial x param].
	Score(dt float64, maskSpikes, X, r *etensor.Float64) *mat.Dense

	// Sample draws nTrials spike trains from the current parameters.
	Sample(t []float64, stim []float64, nTrials int) *etensor.Float64
}

// MetricsFunc is the reporting callback invoked every NMetrics epochs with
// the data and current simulated spike masks.  Returned values are
// accumulated per name across recorded epochs.
type MetricsFunc func(md Model, t []float64, maskData, maskSim *etensor.Float64) map[string]float64
