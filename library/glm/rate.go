package glm

import (
	"math"

	"github.com/emer/etable/etensor"
)

// Eps keeps log(1 - exp(-dt*r)) finite when the rate underflows to zero.
// The bias it introduces at that edge is accepted.
const Eps = 1e-24

// Rate maps the design matrix and a flat parameter vector to the
// conditional intensity: u = X . theta contracted over the basis axis,
// r = NonLin(u).  The result is strictly positive, shape [time, trial].
func (m *GLM) Rate(X *etensor.Float64, theta []float64) *etensor.Float64 {
	nt := X.Dim(0)
	nk := X.Dim(1)
	na := X.Dim(2)
	r := etensor.NewFloat64([]int{nt, nk}, nil, []string{"Time", "Trial"})
	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nk; k++ {
			u := 0.0
			base := (ti*nk + k) * na
			for a := 0; a < na; a++ {
				u += X.Values[base+a] * theta[a]
			}
			r.Values[ti*nk+k] = m.NonLin.Fn(u)
		}
	}
	return r
}

// NegLogLikelihood is the negative log-likelihood of the spike masks under
// the discretized point process with bin width dt:
//
//	NLL = -( sum log(1 - exp(-dt*r)) * spikes - dt * sum r * (1 - spikes) )
func (m *GLM) NegLogLikelihood(dt float64, maskSpikes, r *etensor.Float64) float64 {
	ll := 0.0
	for i, ri := range r.Values {
		if maskSpikes.Values[i] > 0 {
			ll += math.Log(-math.Expm1(-dt*ri) + Eps)
		} else {
			ll -= dt * ri
		}
	}
	return -ll
}

// LogProba returns the per-trial log-probability of each simulated spike
// train under the current rate, the REINFORCE weight that routes gradient
// through the non-differentiable sampling step.  Shape [trial].
func (m *GLM) LogProba(dt float64, maskSpikes, r *etensor.Float64) []float64 {
	nt := r.Dim(0)
	nk := r.Dim(1)
	lp := make([]float64, nk)
	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nk; k++ {
			i := ti*nk + k
			if maskSpikes.Values[i] > 0 {
				lp[k] += math.Log(-math.Expm1(-dt*r.Values[i]) + Eps)
			} else {
				lp[k] -= dt * r.Values[i]
			}
		}
	}
	return lp
}
