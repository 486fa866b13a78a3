package glm

import (
	"math"

	"github.com/emer/emergent/erand"
	"github.com/emer/etable/etensor"
)

// Sample draws nTrials spike trains from the model on the time grid t,
// feeding each spike back through the eta filter so later bins see the
// trial's own history.  Each bin spikes with probability 1 - exp(-dt*r).
// Returns the spike mask, shape [time, trial], values in {0,1}.
func (m *GLM) Sample(t []float64, stim []float64, nTrials int) *etensor.Float64 {
	dt := GetDt(t)
	nt := len(t)
	mask := etensor.NewFloat64([]int{nt, nTrials}, nil, []string{"Time", "Trial"})

	// stimulus drive is shared across trials
	kappaDrive := make([]float64, nt)
	if m.Kappa != nil {
		kf := m.Kappa.Filter(dt, m.KappaCoefs)
		for ti := 0; ti < nt; ti++ {
			for l := 0; l < len(kf) && l < ti; l++ {
				kappaDrive[ti] += kf[l] * stim[ti-1-l]
			}
		}
	}

	var ef []float64
	if m.Eta != nil {
		ef = m.Eta.Filter(dt, m.EtaCoefs)
	}
	// per-trial accumulated history drive
	etaDrive := make([]float64, nt*nTrials)

	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nTrials; k++ {
			u := m.Bias + kappaDrive[ti] + etaDrive[ti*nTrials+k]
			r := m.NonLin.Fn(u)
			p := -math.Expm1(-dt * r)
			if erand.BoolProb(p, -1) {
				mask.Values[ti*nTrials+k] = 1
				for l := 0; l < len(ef) && ti+1+l < nt; l++ {
					etaDrive[(ti+1+l)*nTrials+k] += ef[l]
				}
			}
		}
	}
	return mask
}
