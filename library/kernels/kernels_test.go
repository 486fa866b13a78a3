package kernels

import (
	"math"
	"math/rand"
	"testing"

	"github.com/emer/etable/etensor"
)

func randMask(nt, nk int, p float64) *etensor.Float64 {
	mask := etensor.NewFloat64([]int{nt, nk}, nil, []string{"Time", "Trial"})
	for i := range mask.Values {
		if rand.Float64() < p {
			mask.Values[i] = 1
		}
	}
	return mask
}

func TestLinearMatchesRawFeatures(t *testing.T) {
	rand.Seed(2)
	tg := []float64{0, 0.001, 0.002, 0.003, 0.004}
	a := randMask(5, 3, 0.4)
	b := randMask(5, 2, 0.4)
	g := Linear(tg, a, b)
	phiA := RawFeatures(tg, a)
	phiB := RawFeatures(tg, b)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			dot := 0.0
			for ti := 0; ti < 5; ti++ {
				dot += phiA.At(ti, i) * phiB.At(ti, j)
			}
			if math.Abs(g.At(i, j)-dot) > 1e-12 {
				t.Errorf("linear kernel (%d,%d) = %v, feature dot %v", i, j, g.At(i, j), dot)
			}
		}
	}
}

func TestGaussianSelfSimilarity(t *testing.T) {
	rand.Seed(4)
	tg := []float64{0, 0.001, 0.002}
	a := randMask(3, 4, 0.5)
	g := Gaussian(1.5)(tg, a, a)
	for i := 0; i < 4; i++ {
		if math.Abs(g.At(i, i)-1) > 1e-12 {
			t.Errorf("self similarity should be 1, got %v", g.At(i, i))
		}
		for j := 0; j < 4; j++ {
			if g.At(i, j) < 0 || g.At(i, j) > 1 {
				t.Errorf("gaussian kernel out of range: %v", g.At(i, j))
			}
			if math.Abs(g.At(i, j)-g.At(j, i)) > 1e-12 {
				t.Errorf("gaussian kernel not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestDelta(t *testing.T) {
	tg := []float64{0, 0.001}
	a := etensor.NewFloat64([]int{2, 2}, nil, []string{"Time", "Trial"})
	// trial 0 = [1,0], trial 1 = [1,0]: identical
	a.Values = []float64{1, 1, 0, 0}
	b := etensor.NewFloat64([]int{2, 1}, nil, []string{"Time", "Trial"})
	b.Values = []float64{0, 1}
	g := Delta(tg, a, a)
	if g.At(0, 1) != 1 || g.At(1, 0) != 1 {
		t.Errorf("identical trials should have delta 1")
	}
	gab := Delta(tg, a, b)
	if gab.At(0, 0) != 0 {
		t.Errorf("different trials should have delta 0")
	}
}

func TestCountFeatures(t *testing.T) {
	tg := make([]float64, 8)
	for i := range tg {
		tg[i] = float64(i) * 0.001
	}
	mask := etensor.NewFloat64([]int{8, 1}, nil, []string{"Time", "Trial"})
	for i := 0; i < 8; i++ {
		mask.Values[i] = 1
	}
	phi := CountFeatures(2)(tg, mask)
	if phi.At(0, 0) != 4 || phi.At(1, 0) != 4 {
		t.Errorf("expected 4 spikes per half, got %v and %v", phi.At(0, 0), phi.At(1, 0))
	}
}
