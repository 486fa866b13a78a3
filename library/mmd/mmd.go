package mmd

import "gonum.org/v1/gonum/mat"

// FromFeatures is the reference MMD^2 estimate from explicit feature
// matrices, one column per sample.  Biased uses the plug-in V-statistic
// ||mean_d - mean_fr||^2; unbiased removes the self-pair terms from both
// squared norms.
func FromFeatures(phiD, phiFr *mat.Dense, biased bool) float64 {
	nf, nd := phiD.Dims()
	_, nfr := phiFr.Dims()

	sumD := make([]float64, nf)
	sumFr := make([]float64, nf)
	sq := 0.0 // sum of squared feature entries, data then sim
	sqFr := 0.0
	for a := 0; a < nf; a++ {
		for i := 0; i < nd; i++ {
			v := phiD.At(a, i)
			sumD[a] += v
			sq += v * v
		}
		for j := 0; j < nfr; j++ {
			v := phiFr.At(a, j)
			sumFr[a] += v
			sqFr += v * v
		}
	}

	if biased {
		out := 0.0
		for a := 0; a < nf; a++ {
			d := sumD[a]/float64(nd) - sumFr[a]/float64(nfr)
			out += d * d
		}
		return out
	}

	norm2D, norm2Fr, dot := 0.0, 0.0, 0.0
	for a := 0; a < nf; a++ {
		norm2D += sumD[a] * sumD[a]
		norm2Fr += sumFr[a] * sumFr[a]
		dot += sumD[a] * sumFr[a]
	}
	norm2D = (norm2D - sq) / (float64(nd) * float64(nd-1))
	norm2Fr = (norm2Fr - sqFr) / (float64(nfr) * float64(nfr-1))
	dot /= float64(nd) * float64(nfr)
	return norm2D + norm2Fr - 2*dot
}

// FromGramians is the reference MMD^2 estimate from precomputed pairwise
// gramians.  Unbiased averages each within-distribution gramian over
// off-diagonal pairs only.
func FromGramians(gDD, gFrFr, gDFr *mat.Dense, biased bool) float64 {
	nd, _ := gDD.Dims()
	nfr, _ := gFrFr.Dims()

	sumDD, trDD := gramSums(gDD)
	sumFr, trFr := gramSums(gFrFr)
	sumCross := 0.0
	for i := 0; i < nd; i++ {
		for j := 0; j < nfr; j++ {
			sumCross += gDFr.At(i, j)
		}
	}
	cross := 2 * sumCross / (float64(nd) * float64(nfr))

	if biased {
		return sumDD/(float64(nd)*float64(nd)) + sumFr/(float64(nfr)*float64(nfr)) - cross
	}
	return (sumDD-trDD)/(float64(nd)*float64(nd-1)) + (sumFr-trFr)/(float64(nfr)*float64(nfr-1)) - cross
}

func gramSums(g *mat.Dense) (sum, tr float64) {
	n, _ := g.Dims()
	for i := 0; i < n; i++ {
		tr += g.At(i, i)
		for j := 0; j < n; j++ {
			sum += g.At(i, j)
		}
	}
	return sum, tr
}
