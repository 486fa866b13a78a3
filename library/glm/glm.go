package glm

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// GLM is a point-process generalized linear model of spike trains: the
// conditional intensity in each time bin is a nonlinearity applied to a
// bias plus a stimulus filter (kappa) and a spike-history filter (eta),
// each expanded in a raised-cosine basis.  Either basis may be nil.
type GLM struct {
	Bias       float64      `desc:"bias term, drive when no stimulus or history is present"`
	Kappa      *Basis       `desc:"stimulus filter basis, nil for no stimulus dependence"`
	Eta        *Basis       `desc:"spike-history filter basis, nil for no history dependence"`
	KappaCoefs []float64    `desc:"coefficients of the stimulus filter in the kappa basis"`
	EtaCoefs   []float64    `desc:"coefficients of the history filter in the eta basis"`
	NonLin     NonLinearity `desc:"mapping from linear drive to intensity"`
}

// New returns a GLM with the given bias and bases, coefficients zeroed.
func New(bias float64, kappa, eta *Basis, nl NonLinearity) *GLM {
	m := &GLM{Bias: bias, Kappa: kappa, Eta: eta, NonLin: nl}
	if kappa != nil {
		m.KappaCoefs = make([]float64, kappa.NBasis)
	}
	if eta != nil {
		m.EtaCoefs = make([]float64, eta.NBasis)
	}
	return m
}

func (m *GLM) nKappa() int {
	if m.Kappa == nil {
		return 0
	}
	return m.Kappa.NBasis
}

func (m *GLM) nEta() int {
	if m.Eta == nil {
		return 0
	}
	return m.Eta.NBasis
}

// NParams is the length of the flat parameter vector: 1 + nKappa + nEta.
func (m *GLM) NParams() int {
	return 1 + m.nKappa() + m.nEta()
}

// Params assembles the flat parameter vector [bias, kappa..., eta...].
func (m *GLM) Params() []float64 {
	theta := make([]float64, m.NParams())
	theta[0] = m.Bias
	copy(theta[1:], m.KappaCoefs)
	copy(theta[1+m.nKappa():], m.EtaCoefs)
	return theta
}

// SetParams overwrites bias and coefficients from the flat vector.  Called
// after every optimizer step so the sampler sees the updated parameters.
// A length mismatch is a programming error and panics.
func (m *GLM) SetParams(theta []float64) {
	if len(theta) != m.NParams() {
		panic(fmt.Sprintf("glm: SetParams got %d values, model has %d parameters", len(theta), m.NParams()))
	}
	m.Bias = theta[0]
	copy(m.KappaCoefs, theta[1:1+m.nKappa()])
	copy(m.EtaCoefs, theta[1+m.nKappa():])
}

// GetDt returns the bin width of a uniformly spaced time grid.
func GetDt(t []float64) float64 {
	return t[1] - t[0]
}

// Design builds the [time, trial, basis] design matrix for the given spike
// masks and optional stimulus: column 0 is the constant bias regressor, the
// kappa block is the stimulus convolved with each kappa basis function, and
// the eta block is each trial's own past spikes convolved with each eta
// basis function.  A model with a kappa basis requires a stimulus.
func (m *GLM) Design(t []float64, maskSpikes *etensor.Float64, stim []float64) *etensor.Float64 {
	dt := GetDt(t)
	nt := len(t)
	nk := maskSpikes.Dim(1)
	na := m.NParams()
	X := etensor.NewFloat64([]int{nt, nk, na}, nil, []string{"Time", "Trial", "Basis"})

	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nk; k++ {
			X.Values[(ti*nk+k)*na] = 1
		}
	}

	if m.Kappa != nil {
		if stim == nil {
			panic("glm: Design with a kappa basis requires a stimulus")
		}
		fs := m.Kappa.Filters(dt)
		nl := m.Kappa.NLags(dt)
		for j := 0; j < m.nKappa(); j++ {
			a := 1 + j
			for ti := 0; ti < nt; ti++ {
				v := 0.0
				for l := 0; l < nl && l < ti; l++ {
					v += fs[j][l] * stim[ti-1-l]
				}
				for k := 0; k < nk; k++ {
					X.Values[(ti*nk+k)*na+a] = v
				}
			}
		}
	}

	if m.Eta != nil {
		fs := m.Eta.Filters(dt)
		nl := m.Eta.NLags(dt)
		for j := 0; j < m.nEta(); j++ {
			a := 1 + m.nKappa() + j
			for ti := 0; ti < nt; ti++ {
				for k := 0; k < nk; k++ {
					v := 0.0
					for l := 0; l < nl && l < ti; l++ {
						v += fs[j][l] * maskSpikes.Values[(ti-1-l)*nk+k]
					}
					X.Values[(ti*nk+k)*na+a] = v
				}
			}
		}
	}
	return X
}
