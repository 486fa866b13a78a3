// Package mmd estimates the Maximum-Mean-Discrepancy surrogate loss whose
// parameter gradient matches, in expectation, the gradient of the true
// MMD^2 between the simulated and data spike-train distributions.  The
// sampling step is non-differentiable, so the surrogate weights each
// simulated trial's similarity statistics by that trial's log-probability
// (the score-function / REINFORCE construction).
package mmd

import (
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// FeatureFunc maps spike masks [time, trial] to an explicit feature
// matrix, one column per trial.
type FeatureFunc func(t []float64, mask *etensor.Float64) *mat.Dense

// KernelFunc returns the pairwise similarity matrix between the trials of
// a and the trials of b, shape [aTrials, bTrials].
type KernelFunc func(t []float64, a, b *etensor.Float64) *mat.Dense

// SurrogateFeatures computes the surrogate loss in feature-map mode.
// phiFr has one column per simulated trial across all buffered minibatches,
// already scaled by the buffer's discount weights.  The returned coeffs are
// the per-trial REINFORCE coefficients: loss = sum_j coeffs[j]*logProba[j],
// and the loss gradient is sum_j coeffs[j] * score_j.
//
// Unbiased excludes self-pairs over simulated trials with the U-statistic
// denominator nBatchFr*(nBatchFr-1); biased keeps them (V-statistic).
// nBatchFr <= 1 divides by zero in the unbiased case, by contract.
func SurrogateFeatures(phiD, phiFr *mat.Dense, logProba []float64, nBatchFr int, biased bool) (float64, []float64) {
	nf, nTot := phiFr.Dims()
	_, nd := phiD.Dims()

	sumPhiD := make([]float64, nf)
	sumPhiFr := make([]float64, nf)
	for a := 0; a < nf; a++ {
		for i := 0; i < nd; i++ {
			sumPhiD[a] += phiD.At(a, i)
		}
		for j := 0; j < nTot; j++ {
			sumPhiFr[a] += phiFr.At(a, j)
		}
	}

	coeffs := make([]float64, nTot)
	if !biased {
		uDen := float64(nBatchFr) * float64(nBatchFr-1)
		cDen := float64(nd) * float64(nBatchFr)
		for j := 0; j < nTot; j++ {
			self, cross := 0.0, 0.0
			for a := 0; a < nf; a++ {
				self += phiFr.At(a, j) * (sumPhiFr[a] - phiFr.At(a, j))
				cross += sumPhiD[a] * phiFr.At(a, j)
			}
			coeffs[j] = 2*self/uDen - 2*cross/cDen
		}
	} else {
		// gradient of the V-statistic ||mean_d - mean_fr||^2: the d x d
		// block carries no parameters, the cross and sim-sim blocks
		// collapse to -2 (mean_d - mean_fr) . mean(logProba * phi)
		for j := 0; j < nTot; j++ {
			v := 0.0
			for a := 0; a < nf; a++ {
				v += (sumPhiD[a]/float64(nd) - sumPhiFr[a]/float64(nTot)) * phiFr.At(a, j)
			}
			coeffs[j] = -2 * v / float64(nTot)
		}
	}

	loss := 0.0
	for j, c := range coeffs {
		loss += c * logProba[j]
	}
	return loss, coeffs
}

// SurrogateGramians computes the surrogate loss in kernel mode from the
// precomputed sim x sim and data x sim gramians, both already scaled by
// the buffer's discount weights.  Same contract as SurrogateFeatures.
// The unbiased case zeroes the sim x sim diagonal in place.
func SurrogateGramians(gFrFr, gDFr *mat.Dense, logProba []float64, nBatchFr int, biased bool) (float64, []float64) {
	nTot, _ := gFrFr.Dims()
	nd, _ := gDFr.Dims()

	if !biased {
		for j := 0; j < nTot; j++ {
			gFrFr.Set(j, j, 0)
		}
	}

	coeffs := make([]float64, nTot)
	var frDen float64
	if !biased {
		frDen = float64(nBatchFr) * float64(nBatchFr-1)
	} else {
		frDen = float64(nTot) * float64(nTot)
	}
	crossDen := float64(nd) * float64(nTot)
	for j := 0; j < nTot; j++ {
		rowSum := 0.0
		for i := 0; i < nTot; i++ {
			rowSum += gFrFr.At(j, i)
		}
		colSum := 0.0
		for d := 0; d < nd; d++ {
			colSum += gDFr.At(d, j)
		}
		coeffs[j] = 2*rowSum/frDen - 2*colSum/crossDen
	}

	loss := 0.0
	for j, c := range coeffs {
		loss += c * logProba[j]
	}
	return loss, coeffs
}
