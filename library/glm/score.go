package glm

import (
	"math"

	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// Score computes the closed-form gradient of each trial's log-likelihood
// with respect to the flat parameter vector, one row per trial:
//
//	score[k,a] = dt * sum_t X[t,k,a] * g/(exp(dt*r)-1) * spike
//	           - dt * sum_t X[t,k,a] * g * (1-spike)
//
// where g = dr/du for the configured nonlinearity.  Used to assemble the
// surrogate gradient and the control variates, never as a loss itself.
func (m *GLM) Score(dt float64, maskSpikes, X, r *etensor.Float64) *mat.Dense {
	nt := X.Dim(0)
	nk := X.Dim(1)
	na := X.Dim(2)
	score := mat.NewDense(nk, na, nil)
	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nk; k++ {
			i := ti*nk + k
			g := m.NonLin.DerivFromRate(r.Values[i])
			var w float64
			if maskSpikes.Values[i] > 0 {
				w = dt * g / math.Expm1(dt*r.Values[i])
			} else {
				w = -dt * g
			}
			base := i * na
			for a := 0; a < na; a++ {
				score.Set(k, a, score.At(k, a)+w*X.Values[base+a])
			}
		}
	}
	return score
}
