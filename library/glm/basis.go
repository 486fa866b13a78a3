package glm

import "math"

// Basis is a bank of raised-cosine bump functions covering [0, Support],
// used to expand the stimulus filter (kappa) and the spike-history filter
// (eta) in a small number of coefficients.
type Basis struct {
	NBasis  int       `desc:"number of basis functions"`
	Centers []float64 `desc:"center of each bump, spaced over the support"`
	Width   float64   `desc:"half-width of each bump"`
	Support float64   `desc:"filter duration in the same units as the time grid"`
}

// NewRaisedCosine returns a basis of n bumps evenly tiling [0, support].
// Adjacent bumps overlap by half a width so their sum is flat.
func NewRaisedCosine(n int, support float64) *Basis {
	bs := &Basis{NBasis: n, Support: support}
	bs.Centers = make([]float64, n)
	spacing := support / float64(n)
	bs.Width = 2 * spacing
	for j := 0; j < n; j++ {
		bs.Centers[j] = (float64(j) + 0.5) * spacing
	}
	return bs
}

// Eval returns the value of every basis function at the given lag.
func (bs *Basis) Eval(lag float64) []float64 {
	vals := make([]float64, bs.NBasis)
	for j, c := range bs.Centers {
		d := lag - c
		if math.Abs(d) < bs.Width {
			vals[j] = 0.5 * (1 + math.Cos(math.Pi*d/bs.Width))
		}
	}
	return vals
}

// NLags is the filter length in bins for time step dt.
func (bs *Basis) NLags(dt float64) int {
	n := int(math.Ceil(bs.Support / dt))
	if n < 1 {
		n = 1
	}
	return n
}

// Filters evaluates each basis function on the lag grid dt..NLags*dt,
// returning one filter per basis, each of length NLags.  Lag 0 is excluded
// so history filters never see the current bin.
func (bs *Basis) Filters(dt float64) [][]float64 {
	nl := bs.NLags(dt)
	fs := make([][]float64, bs.NBasis)
	for j := range fs {
		fs[j] = make([]float64, nl)
	}
	for l := 0; l < nl; l++ {
		vals := bs.Eval(float64(l+1) * dt)
		for j := range fs {
			fs[j][l] = vals[j]
		}
	}
	return fs
}

// Filter collapses the basis bank into a single filter with the given
// coefficients: filter[l] = sum_j coefs[j] * basis_j((l+1)*dt).
func (bs *Basis) Filter(dt float64, coefs []float64) []float64 {
	fs := bs.Filters(dt)
	out := make([]float64, bs.NLags(dt))
	for j, f := range fs {
		for l := range out {
			out[l] += coefs[j] * f[l]
		}
	}
	return out
}
