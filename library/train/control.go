package train

import (
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// injectControlVariates adds the variance-reduction correction directly to
// the gradient accumulator, bypassing the surrogate: per parameter, the
// covariance between score^2-weighted MMD row statistics and the score,
// divided by the score variance, scales the mean score.  Only the newest
// minibatch is used.  A score variance at or near zero propagates NaN/Inf,
// by contract.
func (tr *Trainer) injectControlVariates(t []float64, dt float64, phiD *mat.Dense, maskData *etensor.Float64, nd int) {
	cf := &tr.Config
	e := tr.buf.At(tr.buf.Len() - 1)
	nb := e.Mask.Dim(1)

	var gFr, gD *mat.Dense
	if tr.Phi != nil {
		phiNew := tr.Phi(t, e.Mask)
		_, nc := phiNew.Dims()
		gFr = mat.NewDense(nc, nc, nil)
		gFr.Mul(phiNew.T(), phiNew)
		_, ncd := phiD.Dims()
		gD = mat.NewDense(ncd, nc, nil)
		gD.Mul(phiD.T(), phiNew)
	} else {
		gFr = tr.Kernel(t, e.Mask, e.Mask)
		gD = tr.Kernel(t, maskData, e.Mask)
		if !cf.Biased {
			for j := 0; j < nb; j++ {
				gFr.Set(j, j, 0)
			}
		}
	}

	// per-trial MMD weight from the gramian row and column sums
	mw := make([]float64, nb)
	uDen := float64(nb) * float64(nb-1)
	cDen := float64(nb) * float64(nd)
	for j := 0; j < nb; j++ {
		rowSum := 0.0
		for i := 0; i < nb; i++ {
			rowSum += gFr.At(j, i)
		}
		colSum := 0.0
		for d := 0; d < nd; d++ {
			colSum += gD.At(d, j)
		}
		mw[j] = 2*rowSum/uDen - 2*colSum/cDen
	}

	scores := tr.Model.Score(dt, e.Mask, e.X, e.Rate)
	_, na := scores.Dims()
	col := make([]float64, nb)
	sw := make([]float64, nb)
	for a := 0; a < na; a++ {
		corr := 0.0
		for k := 0; k < nb; k++ {
			col[k] = scores.At(k, a)
			sw[k] = col[k] * mw[k]
			corr += col[k] * col[k] * mw[k]
		}
		corr /= float64(nb)
		meanScore := stat.Mean(col, nil)
		varScore := stat.Variance(col, nil)
		cov := corr - meanScore*stat.Mean(sw, nil)
		tr.Grad[a] += cov / varScore * meanScore
	}
}
