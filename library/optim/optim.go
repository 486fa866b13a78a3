// Package optim supplies the gradient-based optimizers and learning-rate
// schedulers the trainer drives through the Optimizer/Scheduler
// interfaces.  They operate on caller-owned parameter and gradient slices;
// the trainer fills the gradient, the optimizer applies it.
package optim

import "math"

// Optimizer is the contract the training loop drives each epoch.
type Optimizer interface {
	// ZeroGrad clears the gradient accumulator before a new epoch.
	ZeroGrad()
	// Step applies one update to the parameters from the current gradient.
	Step()
}

// Scheduler adjusts an optimizer's learning rate once per epoch.
type Scheduler interface {
	Step()
}

// SGD is plain stochastic gradient descent with optional momentum.
type SGD struct {
	Params   []float64 `desc:"parameter slice, updated in place"`
	Grad     []float64 `desc:"gradient slice, filled by the trainer"`
	Lr       float64   `desc:"learning rate"`
	Momentum float64   `desc:"momentum factor, 0 for none"`

	vel []float64
}

func NewSGD(params, grad []float64, lr float64) *SGD {
	return &SGD{Params: params, Grad: grad, Lr: lr, vel: make([]float64, len(params))}
}

func (o *SGD) ZeroGrad() {
	for i := range o.Grad {
		o.Grad[i] = 0
	}
}

func (o *SGD) Step() {
	for i := range o.Params {
		o.vel[i] = o.Momentum*o.vel[i] + o.Grad[i]
		o.Params[i] -= o.Lr * o.vel[i]
	}
}

// Adam keeps exponential moving averages of the gradient and its square
// with bias correction, following Kingma & Ba.
type Adam struct {
	Params []float64 `desc:"parameter slice, updated in place"`
	Grad   []float64 `desc:"gradient slice, filled by the trainer"`
	Lr     float64   `desc:"learning rate"`
	Beta1  float64   `desc:"first-moment decay"`
	Beta2  float64   `desc:"second-moment decay"`
	Eps    float64   `desc:"denominator floor"`

	m, v []float64
	t    int
}

func NewAdam(params, grad []float64, lr float64) *Adam {
	return &Adam{
		Params: params, Grad: grad, Lr: lr,
		Beta1: 0.9, Beta2: 0.999, Eps: 1e-8,
		m: make([]float64, len(params)), v: make([]float64, len(params)),
	}
}

func (o *Adam) ZeroGrad() {
	for i := range o.Grad {
		o.Grad[i] = 0
	}
}

func (o *Adam) Step() {
	o.t++
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	for i := range o.Params {
		g := o.Grad[i]
		o.m[i] = o.Beta1*o.m[i] + (1-o.Beta1)*g
		o.v[i] = o.Beta2*o.v[i] + (1-o.Beta2)*g*g
		o.Params[i] -= o.Lr * (o.m[i] / c1) / (math.Sqrt(o.v[i]/c2) + o.Eps)
	}
}

// StepLR multiplies a learning rate by Gamma every StepSize calls.
// Point LR at the optimizer's Lr field.
type StepLR struct {
	LR       *float64 `desc:"learning rate being scheduled"`
	StepSize int      `desc:"epochs between decays"`
	Gamma    float64  `desc:"multiplicative decay factor"`

	count int
}

func NewStepLR(lr *float64, stepSize int, gamma float64) *StepLR {
	return &StepLR{LR: lr, StepSize: stepSize, Gamma: gamma}
}

func (s *StepLR) Step() {
	s.count++
	if s.StepSize > 0 && s.count%s.StepSize == 0 {
		*s.LR *= s.Gamma
	}
}
