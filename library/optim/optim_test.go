package optim

import (
	"math"
	"testing"
)

func TestSGDStep(t *testing.T) {
	params := []float64{1, -2}
	grad := []float64{0.5, -1}
	o := NewSGD(params, grad, 0.1)
	o.Step()
	if math.Abs(params[0]-0.95) > 1e-12 || math.Abs(params[1]-(-1.9)) > 1e-12 {
		t.Errorf("SGD step wrong: %v", params)
	}
	o.ZeroGrad()
	if grad[0] != 0 || grad[1] != 0 {
		t.Errorf("ZeroGrad left %v", grad)
	}
}

func TestAdamFirstStep(t *testing.T) {
	params := []float64{0, 0}
	grad := []float64{3, -0.01}
	o := NewAdam(params, grad, 0.1)
	o.Step()
	// after bias correction the first step is lr * g/(|g| + eps),
	// essentially lr in the gradient's direction
	for i := range params {
		want := -0.1 * sign(grad[i])
		if math.Abs(params[i]-want) > 1e-4 {
			t.Errorf("Adam first step param %d = %v, want about %v", i, params[i], want)
		}
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func TestStepLR(t *testing.T) {
	lr := 1.0
	s := NewStepLR(&lr, 2, 0.5)
	s.Step()
	if lr != 1.0 {
		t.Errorf("decayed too early: %v", lr)
	}
	s.Step()
	if lr != 0.5 {
		t.Errorf("expected decay to 0.5, got %v", lr)
	}
	s.Step()
	s.Step()
	if lr != 0.25 {
		t.Errorf("expected decay to 0.25, got %v", lr)
	}
}
