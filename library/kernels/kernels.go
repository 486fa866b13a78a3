// Package kernels provides stock feature maps and spike-train kernels for
// the MMD estimator.  A kernel and the feature map it factors through are
// interchangeable representations of the same similarity.
package kernels

import (
	"math"

	"github.com/emer/etable/etensor"
	"github.com/emer/etable/metric"
	"gonum.org/v1/gonum/mat"

	"github.com/adehad/mmd-glm/library/mmd"
)

// trialCol copies trial k of a [time, trial] mask into a contiguous slice.
func trialCol(mask *etensor.Float64, k int, out []float64) []float64 {
	nt := mask.Dim(0)
	nk := mask.Dim(1)
	if out == nil {
		out = make([]float64, nt)
	}
	for ti := 0; ti < nt; ti++ {
		out[ti] = mask.Values[ti*nk+k]
	}
	return out
}

// RawFeatures uses the spike train itself as its feature vector, one
// 0/1 entry per time bin.  Its implicit kernel is Linear.
func RawFeatures(t []float64, mask *etensor.Float64) *mat.Dense {
	nt := mask.Dim(0)
	nk := mask.Dim(1)
	phi := mat.NewDense(nt, nk, nil)
	for ti := 0; ti < nt; ti++ {
		for k := 0; k < nk; k++ {
			phi.Set(ti, k, mask.Values[ti*nk+k])
		}
	}
	return phi
}

// CountFeatures returns per-trial spike counts pooled in nBins equal
// windows of the time grid, a coarse summary feature.
func CountFeatures(nBins int) mmd.FeatureFunc {
	return func(t []float64, mask *etensor.Float64) *mat.Dense {
		nt := mask.Dim(0)
		nk := mask.Dim(1)
		phi := mat.NewDense(nBins, nk, nil)
		for ti := 0; ti < nt; ti++ {
			b := ti * nBins / nt
			for k := 0; k < nk; k++ {
				phi.Set(b, k, phi.At(b, k)+mask.Values[ti*nk+k])
			}
		}
		return phi
	}
}

// Linear is the inner-product kernel on raw spike trains, the gramian
// counterpart of RawFeatures.
func Linear(t []float64, a, b *etensor.Float64) *mat.Dense {
	na := a.Dim(1)
	nb := b.Dim(1)
	nt := a.Dim(0)
	g := mat.NewDense(na, nb, nil)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			v := 0.0
			for ti := 0; ti < nt; ti++ {
				v += a.Values[ti*na+i] * b.Values[ti*nb+j]
			}
			g.Set(i, j, v)
		}
	}
	return g
}

// Gaussian is the RBF kernel exp(-||x-y||^2 / (2 sigma^2)) on raw spike
// trains, with the squared distance from etable's metric funcs.
func Gaussian(sigma float64) mmd.KernelFunc {
	return func(t []float64, a, b *etensor.Float64) *mat.Dense {
		na := a.Dim(1)
		nb := b.Dim(1)
		g := mat.NewDense(na, nb, nil)
		ai := make([]float64, a.Dim(0))
		bj := make([]float64, b.Dim(0))
		den := 2 * sigma * sigma
		for i := 0; i < na; i++ {
			trialCol(a, i, ai)
			for j := 0; j < nb; j++ {
				trialCol(b, j, bj)
				d2 := metric.SumSquares64(ai, bj)
				g.Set(i, j, math.Exp(-d2/den))
			}
		}
		return g
	}
}

// Delta is 1 for identical spike trains and 0 otherwise, mainly useful in
// tests where the gramian structure needs to be obvious.
func Delta(t []float64, a, b *etensor.Float64) *mat.Dense {
	na := a.Dim(1)
	nb := b.Dim(1)
	g := mat.NewDense(na, nb, nil)
	ai := make([]float64, a.Dim(0))
	bj := make([]float64, b.Dim(0))
	for i := 0; i < na; i++ {
		trialCol(a, i, ai)
		for j := 0; j < nb; j++ {
			trialCol(b, j, bj)
			if metric.SumSquares64(ai, bj) == 0 {
				g.Set(i, j, 1)
			}
		}
	}
	return g
}
