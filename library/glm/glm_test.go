package glm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/emer/etable/etensor"
)

func timeGrid(n int, dt float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func TestParamsRoundTrip(t *testing.T) {
	m := New(0.3, NewRaisedCosine(2, 0.05), NewRaisedCosine(3, 0.02), Exp)
	if m.NParams() != 6 {
		t.Fatalf("expected 6 params, got %d", m.NParams())
	}
	vals := []float64{-1.25, 0.5, -0.75, 2.0, -3.5, 0.125}
	m.SetParams(vals)
	got := m.Params()
	for i := range vals {
		if got[i] != vals[i] {
			t.Errorf("param %d changed across set/get: %v != %v", i, got[i], vals[i])
		}
	}
	// get followed by set must be a no-op
	m.SetParams(got)
	again := m.Params()
	for i := range got {
		if again[i] != got[i] {
			t.Errorf("round trip not bit-identical at %d", i)
		}
	}
}

func TestSetParamsBadLength(t *testing.T) {
	m := New(0, nil, NewRaisedCosine(3, 0.02), Exp)
	defer func() {
		if recover() == nil {
			t.Errorf("SetParams with wrong length should panic")
		}
	}()
	m.SetParams([]float64{1, 2})
}

func TestRatePositive(t *testing.T) {
	rand.Seed(7)
	tg := timeGrid(50, 0.001)
	for _, nl := range []NonLinearity{Exp, LogExp} {
		m := New(-2, nil, NewRaisedCosine(2, 0.01), nl)
		mask := etensor.NewFloat64([]int{50, 3}, nil, []string{"Time", "Trial"})
		for i := range mask.Values {
			if rand.Float64() < 0.2 {
				mask.Values[i] = 1
			}
		}
		X := m.Design(tg, mask, nil)
		theta := []float64{-2, -10, 5}
		r := m.Rate(X, theta)
		for i, v := range r.Values {
			if !(v > 0) {
				t.Errorf("%v rate not positive at %d: %v", nl, i, v)
			}
		}
	}
}

func TestNegLogLikelihoodClosedForm(t *testing.T) {
	// with r = 1 everywhere, no spikes and dt = 1 the spiking term
	// vanishes and NLL = sum(r)
	nt, nk := 10, 4
	m := New(0, nil, nil, Exp)
	mask := etensor.NewFloat64([]int{nt, nk}, nil, []string{"Time", "Trial"})
	r := etensor.NewFloat64([]int{nt, nk}, nil, []string{"Time", "Trial"})
	for i := range r.Values {
		r.Values[i] = 1
	}
	nll := m.NegLogLikelihood(1, mask, r)
	want := float64(nt * nk)
	if math.Abs(nll-want) > 1e-12 {
		t.Errorf("NLL = %v, want %v", nll, want)
	}
}

func TestScoreMatchesFiniteDifference(t *testing.T) {
	rand.Seed(3)
	tg := timeGrid(40, 0.001)
	for _, nl := range []NonLinearity{Exp, LogExp} {
		m := New(1.5, nil, NewRaisedCosine(2, 0.01), nl)
		m.EtaCoefs = []float64{-3, 1}
		mask := etensor.NewFloat64([]int{40, 2}, nil, []string{"Time", "Trial"})
		for i := range mask.Values {
			if rand.Float64() < 0.3 {
				mask.Values[i] = 1
			}
		}
		X := m.Design(tg, mask, nil)
		theta := m.Params()
		dt := GetDt(tg)
		score := m.Score(dt, mask, X, m.Rate(X, theta))

		h := 1e-6
		for a := range theta {
			tp := append([]float64(nil), theta...)
			tm := append([]float64(nil), theta...)
			tp[a] += h
			tm[a] -= h
			lpp := m.LogProba(dt, mask, m.Rate(X, tp))
			lpm := m.LogProba(dt, mask, m.Rate(X, tm))
			for k := range lpp {
				fd := (lpp[k] - lpm[k]) / (2 * h)
				if math.Abs(fd-score.At(k, a)) > 1e-5*(1+math.Abs(fd)) {
					t.Errorf("%v score[%d,%d] = %v, finite difference %v", nl, k, a, score.At(k, a), fd)
				}
			}
		}
	}
}

func TestSampleMask(t *testing.T) {
	rand.Seed(11)
	tg := timeGrid(100, 0.001)
	m := New(4, nil, NewRaisedCosine(2, 0.01), Exp)
	m.EtaCoefs = []float64{-4, -1}
	mask := m.Sample(tg, nil, 5)
	if mask.Dim(0) != 100 || mask.Dim(1) != 5 {
		t.Fatalf("bad sample shape %v x %v", mask.Dim(0), mask.Dim(1))
	}
	nspk := 0.0
	for _, v := range mask.Values {
		if v != 0 && v != 1 {
			t.Fatalf("mask value not binary: %v", v)
		}
		nspk += v
	}
	if nspk == 0 {
		t.Errorf("expected some spikes at this drive")
	}
}

func TestBasisFilters(t *testing.T) {
	bs := NewRaisedCosine(3, 0.02)
	fs := bs.Filters(0.001)
	if len(fs) != 3 {
		t.Fatalf("expected 3 filters, got %d", len(fs))
	}
	nl := bs.NLags(0.001)
	if nl != 20 {
		t.Errorf("expected 20 lags, got %d", nl)
	}
	for j, f := range fs {
		if len(f) != nl {
			t.Errorf("filter %d has %d lags, want %d", j, len(f), nl)
		}
		peak := 0.0
		for _, v := range f {
			if v < 0 {
				t.Errorf("raised cosine went negative: %v", v)
			}
			if v > peak {
				peak = v
			}
		}
		if peak == 0 {
			t.Errorf("filter %d is identically zero", j)
		}
	}
}
