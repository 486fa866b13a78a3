// Package train drives the MMD fitting loop: each epoch samples a fresh
// simulated minibatch, folds it into the forgetting buffer, assembles the
// surrogate loss over the discounted effective batch, accumulates the
// score-function gradient explicitly, and steps the external optimizer.
package train

import (
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"

	"github.com/adehad/mmd-glm/library/estats"
	"github.com/adehad/mmd-glm/library/history"
	"github.com/adehad/mmd-glm/library/mmd"
	"github.com/adehad/mmd-glm/library/optim"
)

// Trainer owns the run state: the externally-tracked parameter vector the
// optimizer updates, the gradient accumulator every estimator writes into,
// and the forgetting buffer of recent simulated minibatches.
type Trainer struct {
	Model  Model  `desc:"the generative model being fit"`
	Config Config `desc:"run configuration"`

	Phi    mmd.FeatureFunc `desc:"explicit feature map; mutually exclusive with Kernel"`
	Kernel mmd.KernelFunc  `desc:"pairwise similarity; mutually exclusive with Phi"`

	Optim   optim.Optimizer `desc:"external optimizer over Theta/Grad"`
	Sched   optim.Scheduler `desc:"optional learning-rate scheduler"`
	Metrics MetricsFunc     `desc:"optional reporting callback"`

	Theta []float64 `desc:"flat parameter vector tracked for the optimizer"`
	Grad  []float64 `desc:"gradient accumulator, same length as Theta"`

	buf *history.Buffer
}

// Result is the record of one fitting run.
type Result struct {
	Loss    []float64      `desc:"total loss per epoch"`
	NLL     []float64      `desc:"data negative log-likelihood per epoch, empty if disabled"`
	Metrics *estats.Series `desc:"metric series, one value per recorded epoch"`
}

// New returns a trainer for the model with the parameter vector and
// gradient storage initialized from it.
func New(md Model, cfg Config) *Trainer {
	return &Trainer{
		Model:  md,
		Config: cfg,
		Theta:  md.Params(),
		Grad:   make([]float64, md.NParams()),
	}
}

func (tr *Trainer) validate() error {
	if (tr.Phi == nil) == (tr.Kernel == nil) {
		return fmt.Errorf("train: exactly one of Phi and Kernel must be set")
	}
	if tr.Optim == nil {
		return fmt.Errorf("train: no optimizer set")
	}
	if tr.Config.NumEpochs <= 0 {
		return fmt.Errorf("train: NumEpochs must be positive, got %d", tr.Config.NumEpochs)
	}
	return nil
}

// Fit runs the full training loop on the observed spike masks and returns
// the per-epoch losses and recorded metrics.  stim may be nil for models
// without a stimulus filter.
func (tr *Trainer) Fit(t []float64, maskSpikes *etensor.Float64, stim []float64) (Result, error) {
	res := Result{Metrics: estats.InitSeries()}
	if err := tr.validate(); err != nil {
		return res, err
	}
	cf := &tr.Config
	md := tr.Model
	dt := t[1] - t[0]
	nd := maskSpikes.Dim(1)

	tr.buf = history.NewBuffer(cf.NIterationsStore)

	// data-side quantities that never change over the run
	XDc := md.Design(t, maskSpikes, stim)
	var phiD *mat.Dense
	var gDD *mat.Dense
	if tr.Phi != nil {
		phiD = tr.Phi(t, maskSpikes)
	} else {
		gDD = tr.Kernel(t, maskSpikes, maskSpikes)
	}

	lastLoss := math.NaN()
	for epoch := 0; epoch < cf.NumEpochs; epoch++ {
		if cf.Verbose {
			fmt.Printf("\repoch %d of %d loss %.10f", epoch, cf.NumEpochs, lastLoss)
		}
		tr.Optim.ZeroGrad()

		// SampleStep: draw a fresh minibatch, then recompute its design
		// and rate so the estimator sees the current parameters
		maskFr := md.Sample(t, stim, cf.NBatchFr)
		XFr := md.Design(t, maskFr, stim)
		rFr := md.Rate(XFr, tr.Theta)

		// BufferUpdate
		tr.buf.Push(history.Entry{Rate: rFr, Mask: maskFr, X: XFr})
		maskAll := tr.buf.ConcatMask()
		rAll := tr.buf.ConcatRate()
		wTrial := tr.trialWeights()

		logProba := md.LogProba(dt, maskAll, rAll)

		// LossAssembly
		var surr float64
		var coeffs []float64
		var gFrFr, gDFr *mat.Dense
		var phiAll *mat.Dense
		if tr.Phi != nil {
			phiAll = tr.Phi(t, maskAll)
			scaleCols(phiAll, wTrial)
			surr, coeffs = mmd.SurrogateFeatures(phiD, phiAll, logProba, cf.NBatchFr, cf.Biased)
		} else {
			gFrFr = tr.Kernel(t, maskAll, maskAll)
			gDFr = tr.Kernel(t, maskSpikes, maskAll)
			scaleGram(gFrFr, wTrial)
			scaleCols(gDFr, wTrial)
			surr, coeffs = mmd.SurrogateGramians(gFrFr, gDFr, logProba, cf.NBatchFr, cf.Biased)
		}
		loss := cf.LamMMD * surr

		var scoreDc *mat.Dense
		if cf.LogLikelihood {
			rDc := md.Rate(XDc, tr.Theta)
			nll := md.NegLogLikelihood(dt, maskSpikes, rDc)
			scoreDc = md.Score(dt, maskSpikes, XDc, rDc)
			loss += nll
			res.NLL = append(res.NLL, nll)
		}

		// Backprop: the loss is linear in the per-trial log-probabilities,
		// so its gradient is the coefficient-weighted sum of scores, with
		// each buffered entry re-scored from its stored rate and design
		off := 0
		tr.buf.Do(func(i int, e history.Entry) {
			score := md.Score(dt, e.Mask, e.X, e.Rate)
			nk, na := score.Dims()
			for k := 0; k < nk; k++ {
				c := cf.LamMMD * coeffs[off+k]
				for a := 0; a < na; a++ {
					tr.Grad[a] += c * score.At(k, a)
				}
			}
			off += nk
		})
		if scoreDc != nil {
			nk, na := scoreDc.Dims()
			for k := 0; k < nk; k++ {
				for a := 0; a < na; a++ {
					tr.Grad[a] -= scoreDc.At(k, a)
				}
			}
		}

		if cf.ControlVariates {
			tr.injectControlVariates(t, dt, phiD, maskSpikes, nd)
		}

		if cf.Clip > 0 {
			clipGrad(tr.Grad, cf.Clip)
		}

		// MetricsRecord happens before the step, matching the reference
		// MMD to the parameters the loss was computed with
		if epoch%cf.NMetrics == 0 {
			tr.recordMetrics(res.Metrics, epoch, t, maskSpikes, maskAll, phiD, phiAll, gDD, gFrFr, gDFr)
		}

		tr.Optim.Step()
		if tr.Sched != nil {
			tr.Sched.Step()
		}

		// ParamSync: the sampler must see the updated parameters
		md.SetParams(tr.Theta)

		res.Loss = append(res.Loss, loss)
		lastLoss = loss
	}
	if cf.Verbose {
		fmt.Println()
	}
	return res, nil
}

// trialWeights expands the buffer's per-entry discounts to one weight per
// trial of the concatenated batch, oldest entries first.
func (tr *Trainer) trialWeights() []float64 {
	ws := tr.buf.Weights(tr.Config.Beta)
	out := make([]float64, 0, tr.buf.TotalTrials())
	tr.buf.Do(func(i int, e history.Entry) {
		nk := e.Mask.Dim(1)
		for k := 0; k < nk; k++ {
			out = append(out, ws[i])
		}
	})
	return out
}

func (tr *Trainer) recordMetrics(sr *estats.Series, epoch int, t []float64, maskData, maskAll *etensor.Float64, phiD, phiAll, gDD, gFrFr, gDFr *mat.Dense) {
	sr.AddEpoch(epoch)
	var ref float64
	if tr.Kernel != nil {
		ref = mmd.FromGramians(gDD, gFrFr, gDFr, tr.Config.Biased)
	} else {
		// newest batch only; its discount weight is 1
		nf, nTot := phiAll.Dims()
		newest := phiAll.Slice(0, nf, nTot-tr.Config.NBatchFr, nTot).(*mat.Dense)
		ref = mmd.FromFeatures(phiD, newest, tr.Config.Biased)
	}
	vals := map[string]float64{}
	if tr.Metrics != nil {
		vals = tr.Metrics(tr.Model, t, maskData, maskAll)
	}
	vals["mmd"] = ref
	sr.AddAll(vals)
}

// scaleCols multiplies column j of m by w[j].
func scaleCols(m *mat.Dense, w []float64) {
	nr, nc := m.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			m.Set(i, j, m.At(i, j)*w[j])
		}
	}
}

// scaleGram multiplies entry (i,j) by w[i]*w[j], the gramian image of
// scaling the implicit features of both samples.
func scaleGram(g *mat.Dense, w []float64) {
	n, _ := g.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g.Set(i, j, g.At(i, j)*w[i]*w[j])
		}
	}
}

// clipGrad bounds every gradient component to [-c, c].
func clipGrad(grad []float64, c float64) {
	for i, g := range grad {
		if g > c {
			grad[i] = c
		} else if g < -c {
			grad[i] = -c
		}
	}
}
